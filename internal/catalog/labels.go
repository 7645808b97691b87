package catalog

import (
	"errors"
	"fmt"
)

// ErrUnknownLabel is returned when a label is absent from the mapping in
// either direction. It indicates a mismatch between catalog and label index.
var ErrUnknownLabel = errors.New("unknown label")

// LabelMapping is the bidirectional mapping between human-readable display
// names and machine label codes. It is built once at startup and read-only
// afterward, so it is safe to share across workers without synchronization.
type LabelMapping struct {
	displayToMachine map[string]string
	machineToDisplay map[string]string
}

// NewLabelMapping builds a mapping from parallel display-name/machine-code
// pairs
func NewLabelMapping(pairs map[string]string) *LabelMapping {
	m := &LabelMapping{
		displayToMachine: make(map[string]string, len(pairs)),
		machineToDisplay: make(map[string]string, len(pairs)),
	}
	for display, machine := range pairs {
		m.displayToMachine[display] = machine
		m.machineToDisplay[machine] = display
	}
	return m
}

// DisplayName resolves a machine label code to its display name
func (m *LabelMapping) DisplayName(code string) (string, error) {
	display, ok := m.machineToDisplay[code]
	if !ok {
		return "", fmt.Errorf("%w: no display name for code %q", ErrUnknownLabel, code)
	}
	return display, nil
}

// MachineCode resolves a display name to its machine label code
func (m *LabelMapping) MachineCode(display string) (string, error) {
	code, ok := m.displayToMachine[display]
	if !ok {
		return "", fmt.Errorf("%w: no machine code for display name %q", ErrUnknownLabel, display)
	}
	return code, nil
}

// MachineCodes resolves a list of display names, failing on the first miss
func (m *LabelMapping) MachineCodes(displays []string) ([]string, error) {
	codes := make([]string, 0, len(displays))
	for _, display := range displays {
		code, err := m.MachineCode(display)
		if err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	return codes, nil
}

// Len returns the number of labels in the mapping
func (m *LabelMapping) Len() int {
	return len(m.machineToDisplay)
}
