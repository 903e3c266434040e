package vanilla

// ChromeClass is a typed identifier for semantic CSS classes emitted by the
// templates. The embedded stylesheet targets these names.
type ChromeClass string

const (
	ClassField        ChromeClass = "dynform-field"
	ClassFieldInvalid ChromeClass = "dynform-field--invalid"
	ClassLabel        ChromeClass = "dynform-label"
	ClassControl      ChromeClass = "dynform-control"
	ClassDescription  ChromeClass = "dynform-description"
	ClassError        ChromeClass = "dynform-error"
)

func fieldClasses(invalid bool) string {
	if invalid {
		return string(ClassField) + " " + string(ClassFieldInvalid)
	}
	return string(ClassField)
}
