package jsonbuilder

import "fmt"

func malformedf(format string, args ...any) error {
	return fmt.Errorf("jsonbuilder: %s", fmt.Sprintf(format, args...))
}
