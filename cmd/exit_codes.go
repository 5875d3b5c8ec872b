package cmd

const (
	// Success is the same as EXIT_SUCCESS in C
	Success = iota

	// BadArgs passed to cli; not our fault.
	BadArgs

	// NotFound means that neither a file nor its backup exist.
	NotFound

	// IOError means that reading or writing failed.
	// Probably not our fault, but the disk's or the network's.
	IOError

	// UnknownError is an uncategorized error, probably our fault.
	UnknownError
)
