package implicate

// Version is the release of the implicate module and CLI.
var Version = "0.3.0"
