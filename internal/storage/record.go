package storage

import (
	"github.com/tablediff/tablediff/internal/diff"
)

// RecordResult persists one comparison outcome: the run row plus its
// mismatches. cmpErr is the comparison error, if any; a run that aborted
// on a structural failure is recorded with the mismatches found before
// the abort.
func RecordResult(s Storage, result *diff.Result, cmpErr error) (*ComparisonRun, error) {
	run := &ComparisonRun{
		ExpectedFile:  result.ExpectedFile,
		NewFile:       result.NewFile,
		CellsCompared: result.CellsCompared,
		MismatchCount: len(result.Mismatches),
		DurationMs:    result.Duration.Milliseconds(),
		CreatedAt:     result.Timestamp,
	}

	switch {
	case cmpErr != nil:
		run.Status = RunStatusError
		run.ErrorMessage = cmpErr.Error()
	case result.HasMismatches():
		run.Status = RunStatusMismatch
	default:
		run.Status = RunStatusOK
	}

	if err := s.SaveRun(run); err != nil {
		return nil, err
	}

	records := make([]*MismatchRecord, 0, len(result.Mismatches))
	for _, m := range result.Mismatches {
		records = append(records, &MismatchRecord{
			Column:   m.Column,
			Row:      m.Row,
			Expected: m.Expected,
			Actual:   m.Actual,
		})
	}

	if err := s.SaveMismatches(run.ID, records); err != nil {
		return nil, err
	}

	return run, nil
}
