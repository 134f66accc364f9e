package toolkit

import (
	"github.com/n1rna/automate/internal/errs"
	"github.com/n1rna/automate/internal/version"
)

// Drift tells which side of a runtime/toolkit pair is behind
type Drift int

const (
	InSync Drift = iota
	// ToolkitAhead means the toolkit was built by a newer runtime; the runtime must be upgraded
	ToolkitAhead
	// RuntimeAhead means the toolkit was built by an older runtime; the toolkit must be rebuilt
	RuntimeAhead
)

func (d Drift) String() string {
	switch d {
	case ToolkitAhead:
		return "toolkit ahead"
	case RuntimeAhead:
		return "runtime ahead"
	default:
		return "in sync"
	}
}

// CompareRuntimeVersions reports how the runtime that built a toolkit relates to the running one.
//
// When both versions are pre-releases only the minor numbers are compared. When exactly one is
// a pre-release its tag is stripped first. Otherwise the major numbers are compared.
func CompareRuntimeVersions(runtimeVersion, toolkitRuntimeVersion string) (Drift, error) {
	if toolkitRuntimeVersion == "" {
		return InSync, errs.Compatibility("the toolkit does not record the version of the runtime that built it, so its compatibility cannot be verified")
	}
	runtime, err := version.Parse(runtimeVersion)
	if err != nil {
		return InSync, errs.Compatibility("the runtime version '%s' is not a valid semantic version", runtimeVersion)
	}
	built, err := version.Parse(toolkitRuntimeVersion)
	if err != nil {
		return InSync, errs.Compatibility("the toolkit runtime version '%s' is not a valid semantic version", toolkitRuntimeVersion)
	}

	var runtimePart, builtPart int
	switch {
	case runtime.IsPrerelease() && built.IsPrerelease():
		runtimePart, builtPart = runtime.Minor, built.Minor
	case runtime.IsPrerelease() != built.IsPrerelease():
		runtimePart, builtPart = runtime.WithoutPrerelease().Major, built.WithoutPrerelease().Major
	default:
		runtimePart, builtPart = runtime.Major, built.Major
	}

	switch {
	case builtPart > runtimePart:
		return ToolkitAhead, nil
	case builtPart < runtimePart:
		return RuntimeAhead, nil
	default:
		return InSync, nil
	}
}

// VerifyRuntimeCompatibility fails when a toolkit cannot be used by the running runtime,
// telling the user which side to upgrade
func VerifyRuntimeCompatibility(runtimeVersion, toolkitRuntimeVersion string) error {
	drift, err := CompareRuntimeVersions(runtimeVersion, toolkitRuntimeVersion)
	if err != nil {
		return err
	}
	switch drift {
	case ToolkitAhead:
		return errs.Compatibility("the toolkit was built with a newer runtime (%s) than this one (%s), upgrade the runtime to use it", toolkitRuntimeVersion, runtimeVersion)
	case RuntimeAhead:
		return errs.Compatibility("the toolkit was built with an older runtime (%s) than this one (%s), the toolkit is out of date and must be rebuilt", toolkitRuntimeVersion, runtimeVersion)
	}
	return nil
}
