package enums

// AttendanceStatus records how a member showed up to an event.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "present"
	AttendanceStatusAbsent  AttendanceStatus = "absent"
	AttendanceStatusExcused AttendanceStatus = "excused"
	AttendanceStatusLate    AttendanceStatus = "late"
)

var validAttendanceStatuses = []AttendanceStatus{
	AttendanceStatusPresent,
	AttendanceStatusAbsent,
	AttendanceStatusExcused,
	AttendanceStatusLate,
}

func (v AttendanceStatus) String() string {
	return string(v)
}

func (v AttendanceStatus) IsValid() bool {
	return isKnown(v, validAttendanceStatuses)
}

func ParseAttendanceStatus(value string) (AttendanceStatus, error) {
	return parse(value, "attendance status", validAttendanceStatuses)
}
