package common

import (
	"fmt"
	"runtime/debug"
	"strings"
)

// Version is stamped by release builds:
//
//	go build -ldflags "-X github.com/Alia5/tsdecl/internal/codegen/common.Version=1.2.3"
var Version = ""

const devVersion = "0.0.1-dev"

var readBuildInfo = debug.ReadBuildInfo

// GetVersion reports the tsdecl version named in generated headers and by
// --version. An ldflags stamp wins over the module version recorded by
// go install; source builds without either report 0.0.1-dev.
func GetVersion() (string, error) {
	v := Version
	if v == "" {
		if info, ok := readBuildInfo(); ok && info.Main.Version != "(devel)" {
			v = info.Main.Version
		}
	}
	if v == "" {
		return devVersion, nil
	}

	v = strings.TrimPrefix(v, "v")
	core, _, _ := strings.Cut(v, "-")
	core, _, _ = strings.Cut(core, "+")
	if strings.Count(core, ".") != 2 {
		return "", fmt.Errorf("invalid version %q: expected major.minor.patch", v)
	}
	return v, nil
}

// FileHeader returns the banner written at the top of every generated
// declaration file. source names the catalog the file was generated from.
func FileHeader(version, source string) string {
	var sb strings.Builder
	sb.WriteString("/* eslint-disable */\n")
	fmt.Fprintf(&sb, "// Code generated by tsdecl %s. DO NOT EDIT.\n", version)
	if source != "" {
		fmt.Fprintf(&sb, "// Source: %s\n", source)
	}
	sb.WriteString("\n")
	return sb.String()
}
