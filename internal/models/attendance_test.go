package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAttendanceStatusRoundTrip(t *testing.T) {
	for _, status := range []AttendanceStatus{AttendanceStatusPresent, AttendanceStatusAbsent, AttendanceStatusExcused} {
		present, excused := status.Flags()
		a := Attendance{Present: present, Excused: excused}
		assert.Equal(t, status, a.Status())
		assert.True(t, status.Valid())
	}
	assert.False(t, AttendanceStatus("H").Valid())
}
