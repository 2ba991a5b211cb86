package common

// RemoveSingleQuotesIfAny turns "'red car'" into "red car".
func RemoveSingleQuotesIfAny(str string) string {
	return removeEnclosing(str, '\'')
}

// RemoveDoubleQuotesIfAny turns "\"red car\"" into "red car". Users often quote multi-word objects in commands.
func RemoveDoubleQuotesIfAny(str string) string {
	return removeEnclosing(str, '"')
}

func removeEnclosing(str string, quote byte) string {
	if len(str) >= 2 && str[0] == quote && str[len(str)-1] == quote {
		str = str[1 : len(str)-1]
	}
	return str
}
