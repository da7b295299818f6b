package verdant

// Version exposes the version of the library.
var Version = "0.1.0"
