// Package all imports all detector packages to register them.
// Import this package with a blank identifier to enable all detectors:
//
//	import _ "github.com/pyvet/pyvet/internal/rules/all"
package all

import (
	// Import all detector packages to trigger their init() registration
	_ "github.com/pyvet/pyvet/internal/rules/booleanlogic"
	_ "github.com/pyvet/pyvet/internal/rules/comparisons"
	_ "github.com/pyvet/pyvet/internal/rules/complexity"
	_ "github.com/pyvet/pyvet/internal/rules/contextmanager"
	_ "github.com/pyvet/pyvet/internal/rules/controlflow"
	_ "github.com/pyvet/pyvet/internal/rules/dictoperations"
	_ "github.com/pyvet/pyvet/internal/rules/duplication"
	_ "github.com/pyvet/pyvet/internal/rules/loops"
	_ "github.com/pyvet/pyvet/internal/rules/performance"
)
