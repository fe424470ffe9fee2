package main

import (
	"errors"
	"os"

	"github.com/dadosjusbr/status"

	"github.com/Duddu64/economia/internal/refresh"
)

// ExecutionResult is printed by the refresh command for every run.
type ExecutionResult struct {
	Resultado *refresh.Result `json:"resultado,omitempty"`
	ProcInfo  *ProcInfo       `json:"procinfo,omitempty"`
}

// ProcInfo stores information about a failed run.
//
// NOTE: it is only filled when the run fails. A successful run is fully
// described by its result.
type ProcInfo struct {
	RunID      string `json:"run_id,omitempty"` // Identifier of the failed run
	Stage      string `json:"etapa,omitempty"`  // Pipeline step the run stopped at
	Stderr     string `json:"stderr"`           // Error message of the run
	Cmd        string `json:"cmd"`              // Command that has been executed
	CmdDir     string `json:"cmddir"`           // Local directory, in which the command has been executed
	ExitStatus int    `json:"status,omitempty"` // Exit code the process ends with
}

func newExecutionResult(cmdline string, res refresh.Result, err error) ExecutionResult {
	if err == nil {
		return ExecutionResult{Resultado: &res}
	}
	dir, _ := os.Getwd()
	pi := &ProcInfo{
		Stderr:     err.Error(),
		Cmd:        cmdline,
		CmdDir:     dir,
		ExitStatus: int(status.SystemError),
	}
	var f *refresh.Failure
	if errors.As(err, &f) {
		pi.RunID = f.RunID
		pi.Stage = string(f.Stage)
	}
	return ExecutionResult{ProcInfo: pi}
}
