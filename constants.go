// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy of
// the License at
//
//  http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations under
// the License.
package cushion

// Version is the current version of this package.
const Version = "0.1.0"

// Reserved document keys.
const (
	KeyID  = "_id"
	KeyRev = "_rev"
)

// Keys written by the built-in transforms.
const (
	KeyProtected    = "is_protected"
	KeyDateModified = "date_modified"
)

// TimestampFormat is the ISO-8601 layout used for KeyDateModified. Values
// are always UTC, so they sort lexically.
const TimestampFormat = "2006-01-02T15:04:05Z"

// Messages reported in ImportError.Message.
const (
	MessageExists    = "Document already exists."
	MessageDuplicate = "Duplicate document; differences between documents shown."
)
