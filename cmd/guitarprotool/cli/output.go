// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
)

// JSONOutput adds a --json flag to any params struct that embeds it.
// Commands call [JSONOutput.EmitJSON] before their text output:
//
//	if done, err := params.EmitJSON(stdout, result); done {
//	    return err
//	}
type JSONOutput struct {
	OutputJSON bool `json:"-" flag:"json" desc:"output as JSON"`
}

// EmitJSON reports whether --json was given, and if so writes result
// to w with [WriteJSON]. A nil slice is written as [] rather than null.
func (j *JSONOutput) EmitJSON(w io.Writer, result any) (bool, error) {
	if !j.OutputJSON {
		return false, nil
	}
	return true, WriteJSON(w, emptyIfNil(result))
}

// WriteJSON writes value to w as two-space indented JSON.
func WriteJSON(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

func emptyIfNil(value any) any {
	v := reflect.ValueOf(value)
	if v.Kind() != reflect.Slice || !v.IsNil() {
		return value
	}
	return reflect.MakeSlice(v.Type(), 0, 0).Interface()
}

// ExitError ends the process with Code and no "error:" line. Commands
// return it after writing their own output when a non-zero status is
// an expected answer: "detect" on an unrecognised file, "repair
// --check" on a damaged one.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string { return fmt.Sprintf("exit status %d", e.Code) }

// ExitCode is the method main looks for on a returned error.
func (e *ExitError) ExitCode() int { return e.Code }
