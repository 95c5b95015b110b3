//  Copyright (c) 2014 Couchbase, Inc.
//  Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file
//  except in compliance with the License. You may obtain a copy of the License at
//    http://www.apache.org/licenses/LICENSE-2.0
//  Unless required by applicable law or agreed to in writing, software distributed under the
//  License is distributed on an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND,
//  either express or implied. See the License for the specific language governing permissions
//  and limitations under the License.

package planner

import "testing"

func TestDefaultConfigurationPrefersIndexAndForbidsInMemorySort(t *testing.T) {
	cfg := DefaultConfiguration()
	if cfg.IndexScanPreference != PreferIndex {
		t.Fatal("the out-of-the-box tie-break should favor an indexed scan")
	}
	if cfg.SortConfiguration.AllowInMemorySort {
		t.Fatal("the out-of-the-box configuration should not silently sort in memory")
	}
	if cfg.ComplexityThreshold != DefaultComplexityThreshold {
		t.Fatalf("expected the default complexity threshold, got %d", cfg.ComplexityThreshold)
	}
	if !cfg.AttemptFailedInJoinAsUnion {
		t.Fatal("the default configuration should fall an IN-join back to an IN-union when sorted")
	}
}

func TestDefaultConfigurationCallsReturnIndependentValues(t *testing.T) {
	a := DefaultConfiguration()
	a.IndexScanPreference = PreferScan
	b := DefaultConfiguration()
	if b.IndexScanPreference != PreferIndex {
		t.Fatal("mutating one Configuration value must not affect a freshly constructed one")
	}
}
