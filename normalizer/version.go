package normalizer

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/robhayesmba/openapi-enforcer/oaserrors"
)

// Version is a parsed specification version.
type Version struct {
	Major int
	Minor int
	Patch int
}

// String returns the version as major.minor.patch.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

var rxVersion = regexp.MustCompile(`^(\d+)(?:\.(\d+)(?:\.(\d+))?)?$`)

// ParseVersion parses major[.minor[.patch]]; missing parts are zero.
func ParseVersion(s string) (Version, error) {
	m := rxVersion.FindStringSubmatch(s)
	if m == nil {
		return Version{}, &oaserrors.ConfigError{Option: "version", Value: s, Message: "expected major[.minor[.patch]]"}
	}
	var v Version
	v.Major, _ = strconv.Atoi(m[1])
	if m[2] != "" {
		v.Minor, _ = strconv.Atoi(m[2])
	}
	if m[3] != "" {
		v.Patch, _ = strconv.Atoi(m[3])
	}
	return v, nil
}

// DetectVersion reads the "swagger" or "openapi" property of a document.
// "swagger" wins when both are present. The declared value must be a string
// of the form major[.minor[.patch]].
func DetectVersion(doc map[string]any) (Version, error) {
	prop := "swagger"
	raw, ok := doc[prop]
	if !ok {
		prop = "openapi"
		if raw, ok = doc[prop]; !ok {
			return Version{}, &oaserrors.VersionError{}
		}
	}
	s, isString := raw.(string)
	if !isString || !rxVersion.MatchString(s) {
		return Version{}, &oaserrors.VersionError{Property: prop, Value: raw}
	}
	return ParseVersion(s)
}
