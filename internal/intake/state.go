package intake

// Intake holds the current selection and the last validation error.
// It is owned by a single workflow and is not safe for concurrent use.
type Intake struct {
	validator *Validator
	normalize func(PendingFile) (PendingFile, error)
	file      *PendingFile
	err       error
}

// New creates an empty Intake
func New(validator *Validator) *Intake {
	return &Intake{validator: validator, normalize: Normalize}
}

// Accept validates f and, if it passes, replaces the current selection.
// A rejected file leaves the current selection untouched and records the error.
func (in *Intake) Accept(f PendingFile) error {
	if err := in.validator.Validate(f); err != nil {
		in.err = err
		return err
	}

	normalized, err := in.normalize(f)
	if err == nil {
		// A rendered PDF page can be larger than the original document
		err = in.validator.checkSize(normalized)
	}
	if err != nil {
		in.err = err
		return err
	}

	in.file = &normalized
	in.err = nil
	return nil
}

// File returns the current selection
func (in *Intake) File() (PendingFile, bool) {
	if in.file == nil {
		return PendingFile{}, false
	}
	return *in.file, true
}

// Err returns the outstanding validation error, if any
func (in *Intake) Err() error {
	return in.err
}

// Fail records a validation error raised outside of Accept
func (in *Intake) Fail(err error) {
	in.err = err
}

// Reset returns the intake to its empty state
func (in *Intake) Reset() {
	in.file = nil
	in.err = nil
}

// Validator returns the validator used by Accept
func (in *Intake) Validator() *Validator {
	return in.validator
}
