package codes

// ErrorCodes maps javac exit codes to their descriptions
var ErrorCodes = map[int]string{
	0: "Success",
	1: "Compilation errors reported",
	2: "Bad command-line arguments",
	3: "System error or resource exhaustion",
	4: "Compiler crashed or terminated abnormally",
}

// IsSuccess returns true if the exit code indicates successful compilation
func IsSuccess(code int) bool {
	return code == 0
}

// GetErrorMessage returns the error message for a given exit code, or a generic message if unknown
func GetErrorMessage(code int) string {
	if msg, ok := ErrorCodes[code]; ok {
		return msg
	}

	return "Unknown error"
}
