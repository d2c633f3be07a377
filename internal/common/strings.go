package common

// UnknownStr is returned by String methods for values outside their enum.
const UnknownStr = "unknown"

// Placeholder is the value stored in value-set slots that were not written.
const Placeholder = "-"
