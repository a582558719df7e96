package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FileState is the existence status of a file at a pillar.
type FileState int

// File state codes. These are persisted: never renumber.
const (
	FileStateUnknown  FileState = 0
	FileStateExisting FileState = 1
	FileStateMissing  FileState = 2
)

var fileStateNames = map[FileState]string{
	FileStateUnknown:  "UNKNOWN",
	FileStateExisting: "EXISTING",
	FileStateMissing:  "MISSING",
}

// FileStates lists every file state.
func FileStates() []FileState {
	return []FileState{FileStateUnknown, FileStateExisting, FileStateMissing}
}

// Code returns the stable integer code of the state.
func (s FileState) Code() int {
	return int(s)
}

// String returns the upper-case name of the state.
func (s FileState) String() string {
	if name, ok := fileStateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("FileState(%d)", int(s))
}

// ParseFileState decodes a persisted code.
func ParseFileState(code int) (FileState, error) {
	s := FileState(code)
	if _, ok := fileStateNames[s]; !ok {
		return FileStateUnknown, fmt.Errorf("invalid file state code %d", code)
	}
	return s, nil
}

// ParseFileStateName decodes a state name, case-insensitively.
func ParseFileStateName(name string) (FileState, error) {
	for s, n := range fileStateNames {
		if strings.EqualFold(n, name) {
			return s, nil
		}
	}
	return FileStateUnknown, fmt.Errorf("invalid file state %q", name)
}

// MarshalJSON encodes the state by name.
func (s FileState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a state name.
func (s *FileState) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseFileStateName(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ChecksumState is the trust status of the checksum recorded for a file at a pillar.
type ChecksumState int

// Checksum state codes. These are persisted: never renumber.
const (
	ChecksumStateUnknown ChecksumState = 0
	ChecksumStateValid   ChecksumState = 1
	ChecksumStateError   ChecksumState = 2
)

var checksumStateNames = map[ChecksumState]string{
	ChecksumStateUnknown: "UNKNOWN",
	ChecksumStateValid:   "VALID",
	ChecksumStateError:   "ERROR",
}

// ChecksumStates lists every checksum state.
func ChecksumStates() []ChecksumState {
	return []ChecksumState{ChecksumStateUnknown, ChecksumStateValid, ChecksumStateError}
}

// Code returns the stable integer code of the state.
func (s ChecksumState) Code() int {
	return int(s)
}

// String returns the upper-case name of the state.
func (s ChecksumState) String() string {
	if name, ok := checksumStateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("ChecksumState(%d)", int(s))
}

// ParseChecksumState decodes a persisted code.
func ParseChecksumState(code int) (ChecksumState, error) {
	s := ChecksumState(code)
	if _, ok := checksumStateNames[s]; !ok {
		return ChecksumStateUnknown, fmt.Errorf("invalid checksum state code %d", code)
	}
	return s, nil
}

// ParseChecksumStateName decodes a state name, case-insensitively.
func ParseChecksumStateName(name string) (ChecksumState, error) {
	for s, n := range checksumStateNames {
		if strings.EqualFold(n, name) {
			return s, nil
		}
	}
	return ChecksumStateUnknown, fmt.Errorf("invalid checksum state %q", name)
}

// MarshalJSON encodes the state by name.
func (s ChecksumState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a state name.
func (s *ChecksumState) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseChecksumStateName(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
