package region

import "fmt"

// RegistrationOutcome is the closed set of results of a registration.
type RegistrationOutcome int

const (
	RegistrationOK RegistrationOutcome = iota
	RegistrationOverlap
	RegistrationTooBig
	RegistrationFail

	// RegistrationClientIsNotEnabled and RegistrationNotEnoughPoints are
	// produced by host-side validation only; the registry never returns them.
	RegistrationClientIsNotEnabled
	RegistrationNotEnoughPoints
)

var registrationNames = [...]string{
	RegistrationOK:                 "OK",
	RegistrationOverlap:            "Overlap",
	RegistrationTooBig:             "TooBig",
	RegistrationFail:               "Fail",
	RegistrationClientIsNotEnabled: "ClientIsNotEnabled",
	RegistrationNotEnoughPoints:    "NotEnoughPoints",
}

func (o RegistrationOutcome) String() string {
	if o < 0 || int(o) >= len(registrationNames) {
		return fmt.Sprintf("RegistrationOutcome(%d)", int(o))
	}
	return registrationNames[o]
}

// MarshalText implements encoding.TextMarshaler.
func (o RegistrationOutcome) MarshalText() ([]byte, error) {
	if o < 0 || int(o) >= len(registrationNames) {
		return nil, fmt.Errorf("unknown registration outcome %d", int(o))
	}
	return []byte(registrationNames[o]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *RegistrationOutcome) UnmarshalText(text []byte) error {
	for i, name := range registrationNames {
		if name == string(text) {
			*o = RegistrationOutcome(i)
			return nil
		}
	}
	return fmt.Errorf("unknown registration outcome %q", string(text))
}

// DeletionOutcome is the closed set of results of a deletion.
type DeletionOutcome int

const (
	DeletionOK DeletionOutcome = iota
	DeletionNotOwner
	DeletionNoRegion

	// DeletionClientIsNotEnabled is produced by host-side validation only.
	DeletionClientIsNotEnabled
	DeletionFail
)

var deletionNames = [...]string{
	DeletionOK:                 "OK",
	DeletionNotOwner:           "NotOwner",
	DeletionNoRegion:           "NoRegion",
	DeletionClientIsNotEnabled: "ClientIsNotEnabled",
	DeletionFail:               "Fail",
}

func (o DeletionOutcome) String() string {
	if o < 0 || int(o) >= len(deletionNames) {
		return fmt.Sprintf("DeletionOutcome(%d)", int(o))
	}
	return deletionNames[o]
}

// MarshalText implements encoding.TextMarshaler.
func (o DeletionOutcome) MarshalText() ([]byte, error) {
	if o < 0 || int(o) >= len(deletionNames) {
		return nil, fmt.Errorf("unknown deletion outcome %d", int(o))
	}
	return []byte(deletionNames[o]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *DeletionOutcome) UnmarshalText(text []byte) error {
	for i, name := range deletionNames {
		if name == string(text) {
			*o = DeletionOutcome(i)
			return nil
		}
	}
	return fmt.Errorf("unknown deletion outcome %q", string(text))
}
