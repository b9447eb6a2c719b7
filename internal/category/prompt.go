package category

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Prompt prints the numbered category menu to w and reads one selection from r.
func Prompt(r io.Reader, w io.Writer) (Category, error) {
	ordinals := make([]string, len(all))
	for i, c := range all {
		ordinals[i] = fmt.Sprint(c.Ordinal)
	}

	fmt.Fprintf(w, "Please enter the serial number of the device to be tested: %s\n", strings.Join(ordinals, " "))
	for _, c := range all {
		fmt.Fprintf(w, "  %d) %s\n", c.Ordinal, c.Name)
	}
	fmt.Fprintf(w, "Enter number [1-%d]: ", len(all))

	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return Category{}, fmt.Errorf("reading selection: %w", err)
	}

	return Select(line)
}
