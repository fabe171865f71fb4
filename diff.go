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

import (
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/pmezard/go-difflib/difflib"
)

var dumper = spew.ConfigState{
	Indent:                  "  ",
	DisableMethods:          true,
	SortKeys:                true,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
}

// recordDiff returns a unified diff between the dumps of two records read
// from lines lineA and lineB.
func recordDiff(a Record, lineA int, b Record, lineB int) string {
	diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(dumper.Sdump(a)),
		B:        difflib.SplitLines(dumper.Sdump(b)),
		FromFile: fmt.Sprintf("line %d", lineA),
		ToFile:   fmt.Sprintf("line %d", lineB),
		Context:  3,
	})
	return diff
}
