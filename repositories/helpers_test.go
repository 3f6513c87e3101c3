package repositories

import (
	"errors"
	"testing"
)

type fakeResult struct {
	rows int64
	err  error
}

func (f fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (f fakeResult) RowsAffected() (int64, error) { return f.rows, f.err }

func TestCheckAffectedRows(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name    string
		result  fakeResult
		wantIs  error
		wantNil bool
	}{
		{"one row", fakeResult{rows: 1}, nil, true},
		{"no rows", fakeResult{rows: 0}, ErrDrawNotFound, false},
		{"driver error", fakeResult{err: boom}, boom, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkAffectedRows(tt.result, ErrDrawNotFound)
			if tt.wantNil {
				if err != nil {
					t.Errorf("error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantIs) {
				t.Errorf("error = %v, want %v", err, tt.wantIs)
			}
		})
	}
}
