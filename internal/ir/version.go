package ir

// Version constants for the program schema and translator.
const (
	// IRVersion is the front-end program schema version.
	IRVersion = "1"

	// TranslatorVersion is the lowerc version recorded in the ledger.
	TranslatorVersion = "0.1.0"
)
