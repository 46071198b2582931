/*************************************************************************
 * Copyright 2026 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/gravwell/skiptape/format"
)

// Environment variable names ApplyEnv overrides, following the
// ingest config loader's NAME / NAME_FILE convention: if NAME is unset
// but NAME_FILE names a readable file, the file's first line is used
// instead (for secrets mounted into a container rather than passed as
// a literal env var -- not that a fidelity mode is a secret, but it
// keeps every override sourced the same way).
const (
	EnvFidelity        = "SKIPTAPE_FIDELITY"
	EnvAlias           = "SKIPTAPE_ALIAS"
	EnvCSVDelimiter    = "SKIPTAPE_CSV_DELIMITER"
	EnvInternThreshold = "SKIPTAPE_INTERN_THRESHOLD"
)

func lookupEnv(name string) (string, bool) {
	if v, ok := os.LookupEnv(name); ok {
		return v, true
	}
	fp, ok := os.LookupEnv(name + "_FILE")
	if !ok {
		return "", false
	}
	f, err := os.Open(fp)
	if err != nil {
		return "", false
	}
	defer f.Close()
	s := bufio.NewScanner(f)
	if !s.Scan() {
		return "", false
	}
	return s.Text(), true
}

// ApplyEnv overlays environment-variable overrides onto o, returning
// the updated value. Unset variables leave the corresponding field
// untouched. This never reads a config file -- ParseOptions has none
// -- only the process environment.
func (o ParseOptions) ApplyEnv() (ParseOptions, error) {
	if v, ok := lookupEnv(EnvFidelity); ok {
		f, err := parseFidelity(v)
		if err != nil {
			return o, fmt.Errorf("config: %s: %w", EnvFidelity, err)
		}
		o.Fidelity = f
	}
	if v, ok := lookupEnv(EnvAlias); ok {
		a, err := parseAlias(v)
		if err != nil {
			return o, fmt.Errorf("config: %s: %w", EnvAlias, err)
		}
		o.Alias = a
	}
	if v, ok := lookupEnv(EnvCSVDelimiter); ok {
		if len(v) != 1 {
			return o, fmt.Errorf("config: %s: want exactly one byte, got %q", EnvCSVDelimiter, v)
		}
		o.CSVDelimiter = v[0]
	}
	if v, ok := lookupEnv(EnvInternThreshold); ok {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return o, fmt.Errorf("config: %s: want a non-negative integer, got %q", EnvInternThreshold, v)
		}
		o.InternThreshold = n
	}
	return o, nil
}

func parseFidelity(v string) (format.Fidelity, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "strict":
		return format.Strict, nil
	case "warning", "warn":
		return format.Warning, nil
	case "lossy":
		return format.Lossy, nil
	default:
		return 0, fmt.Errorf("unknown fidelity %q", v)
	}
}

func parseAlias(v string) (format.AliasStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "inline":
		return format.AliasInline, nil
	case "preserve":
		return format.AliasPreserve, nil
	case "lazy":
		return format.AliasLazy, nil
	default:
		return 0, fmt.Errorf("unknown alias strategy %q", v)
	}
}
