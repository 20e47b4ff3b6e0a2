package systemcode

// TODO: Add more specific exit codes per failure stage
const (
	ErrorCodeGeneric = 3
)
