package calendar

import "encoding/json"

// BusyStatus is the Outlook free/busy classification of an appointment.
// The raw codes come straight from the store; anything outside the closed
// set maps to BusyStatusUnknown.
type BusyStatus int

const (
	BusyStatusFree             BusyStatus = 0
	BusyStatusTentative        BusyStatus = 1
	BusyStatusBusy             BusyStatus = 2
	BusyStatusOutOfOffice      BusyStatus = 3
	BusyStatusWorkingElsewhere BusyStatus = 4
	BusyStatusUnknown          BusyStatus = -1
)

// SafeBusyStatus maps a raw store code to a BusyStatus. It is total: an
// absent (ok=false) or unrecognized code yields BusyStatusUnknown rather
// than an error, so malformed classification never aborts ingestion of an
// otherwise valid appointment.
func SafeBusyStatus(code int, ok bool) BusyStatus {
	if !ok {
		return BusyStatusUnknown
	}
	switch s := BusyStatus(code); s {
	case BusyStatusFree, BusyStatusTentative, BusyStatusBusy, BusyStatusOutOfOffice, BusyStatusWorkingElsewhere:
		return s
	default:
		return BusyStatusUnknown
	}
}

func (s BusyStatus) String() string {
	switch s {
	case BusyStatusFree:
		return "FREE"
	case BusyStatusTentative:
		return "TENTATIVE"
	case BusyStatusBusy:
		return "BUSY"
	case BusyStatusOutOfOffice:
		return "OUT_OF_OFFICE"
	case BusyStatusWorkingElsewhere:
		return "WORKING_ELSE_WHERE"
	default:
		return "UNKNOWN"
	}
}

// MarshalJSON serializes the status as its string name.
func (s BusyStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Sensitivity is the Outlook sensitivity classification of an appointment.
type Sensitivity int

const (
	SensitivityNormal       Sensitivity = 0
	SensitivityPersonal     Sensitivity = 1
	SensitivityPrivate      Sensitivity = 2
	SensitivityConfidential Sensitivity = 3
	SensitivityUnknown      Sensitivity = -1
)

// SafeSensitivity maps a raw store code to a Sensitivity with the same
// total-mapping policy as SafeBusyStatus.
func SafeSensitivity(code int, ok bool) Sensitivity {
	if !ok {
		return SensitivityUnknown
	}
	switch s := Sensitivity(code); s {
	case SensitivityNormal, SensitivityPersonal, SensitivityPrivate, SensitivityConfidential:
		return s
	default:
		return SensitivityUnknown
	}
}

func (s Sensitivity) String() string {
	switch s {
	case SensitivityNormal:
		return "NORMAL"
	case SensitivityPersonal:
		return "PERSONAL"
	case SensitivityPrivate:
		return "PRIVATE"
	case SensitivityConfidential:
		return "CONFIDENTIAL"
	default:
		return "UNKNOWN"
	}
}

// MarshalJSON serializes the sensitivity as its string name.
func (s Sensitivity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}
