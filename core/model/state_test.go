package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileState_CodesAreStable(t *testing.T) {
	assert.Equal(t, 0, FileStateUnknown.Code())
	assert.Equal(t, 1, FileStateExisting.Code())
	assert.Equal(t, 2, FileStateMissing.Code())
}

func TestChecksumState_CodesAreStable(t *testing.T) {
	assert.Equal(t, 0, ChecksumStateUnknown.Code())
	assert.Equal(t, 1, ChecksumStateValid.Code())
	assert.Equal(t, 2, ChecksumStateError.Code())
}

func TestStates_RoundTrip(t *testing.T) {
	for _, s := range FileStates() {
		decoded, err := ParseFileState(s.Code())
		require.NoError(t, err)
		assert.Equal(t, s, decoded)

		byName, err := ParseFileStateName(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, byName)
	}
	for _, s := range ChecksumStates() {
		decoded, err := ParseChecksumState(s.Code())
		require.NoError(t, err)
		assert.Equal(t, s, decoded)

		byName, err := ParseChecksumStateName(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, byName)
	}
}

func TestStates_InvalidCodes(t *testing.T) {
	_, err := ParseFileState(3)
	assert.Error(t, err)
	_, err = ParseFileState(-1)
	assert.Error(t, err)
	_, err = ParseChecksumState(7)
	assert.Error(t, err)
	_, err = ParseFileStateName("gone")
	assert.Error(t, err)
}

func TestStates_JSON(t *testing.T) {
	info := FileInfo{FileID: "f1", FileState: FileStateMissing, ChecksumState: ChecksumStateValid}
	data, err := json.Marshal(info)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"file_state":"MISSING"`)
	assert.Contains(t, string(data), `"checksum_state":"VALID"`)

	var decoded FileInfo
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, FileStateMissing, decoded.FileState)
	assert.Equal(t, ChecksumStateValid, decoded.ChecksumState)
}

func TestChecksumSpec_Normalized(t *testing.T) {
	spec := ChecksumSpec{Algorithm: " md5 ", Salt: "ABCD"}.Normalized()
	assert.Equal(t, "MD5", spec.Algorithm)
	assert.Equal(t, "abcd", spec.Salt)
}
