// Package console runs the interactive prompt loop shared by every task.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/lehigh-university-libraries/nlpkit/internal/analysis"
)

// ErrInvalidCount is returned for a count that is not a positive integer.
var ErrInvalidCount = errors.New("invalid number")

const quit = "quit"

// Driver reads text, optional parameters and a method choice, dispatches the
// request and prints the result until the user quits or input ends.
type Driver struct {
	task    analysis.Task
	scanner *bufio.Scanner
	out     io.Writer
}

// New returns a Driver for task reading from in and writing to out.
func New(task analysis.Task, in io.Reader, out io.Writer) *Driver {
	scanner := bufio.NewScanner(in)
	const maxCapacity = 1024 * 1024
	scanner.Buffer(make([]byte, 64*1024), maxCapacity)
	return &Driver{task: task, scanner: scanner, out: out}
}

// Run loops until "quit", end of input or ctx is done. Errors from a single
// iteration are printed and the loop continues.
func (d *Driver) Run(ctx context.Context) error {
	fmt.Fprintf(d.out, "Welcome to nlpkit %s!\n", d.task.Subject())

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		text, ok := d.prompt(fmt.Sprintf("\nEnter the text for %s (or '%s' to exit): ", d.task.Subject(), quit))
		if !ok {
			return d.scanner.Err()
		}
		if strings.EqualFold(strings.TrimSpace(text), quit) {
			return nil
		}

		req := analysis.Request{Text: text}
		if counter, isCounter := d.task.(analysis.Counter); isCounter {
			answer, ok := d.prompt(counter.CountPrompt())
			if !ok {
				return d.scanner.Err()
			}
			count, err := ParseCount(answer, counter.DefaultCount())
			if err != nil {
				fmt.Fprintf(d.out, "An error occurred: %v\n", err)
				continue
			}
			req.Count = count
		}

		method, ok := d.chooseMethod()
		if !ok {
			return d.scanner.Err()
		}
		req.Method = method

		slog.Debug("Running analysis", "task", d.task.Name(), "method", method)
		result, err := d.task.Analyze(ctx, req)
		if err != nil {
			var unavailable *analysis.UnavailableError
			if errors.As(err, &unavailable) {
				fmt.Fprintf(d.out, "%s is not available. Please choose another method.\n", unavailable.Label)
				continue
			}
			fmt.Fprintf(d.out, "An error occurred: %v\n", err)
			continue
		}
		result.Render(d.out)
	}
}

// chooseMethod prints the menu and reads a choice. An empty answer picks the
// default method; an unrecognized answer asks again.
func (d *Driver) chooseMethod() (string, bool) {
	methods := d.task.Methods()

	fmt.Fprintf(d.out, "\nChoose a %s method:\n", d.task.Subject())
	for i, m := range methods {
		line := fmt.Sprintf("%d. %s", i+1, m.Label)
		if !m.Available {
			line += " (not available)"
		}
		if m.Key == d.task.DefaultMethod() {
			line += " [default]"
		}
		fmt.Fprintln(d.out, line)
	}

	for {
		answer, ok := d.prompt(fmt.Sprintf("Enter your choice (1-%d): ", len(methods)))
		if !ok {
			return "", false
		}
		if key, valid := Choose(methods, answer, d.task.DefaultMethod()); valid {
			return key, true
		}
		fmt.Fprintf(d.out, "Invalid choice %q. Enter a number from 1 to %d.\n", strings.TrimSpace(answer), len(methods))
	}
}

func (d *Driver) prompt(message string) (string, bool) {
	fmt.Fprint(d.out, message)
	if !d.scanner.Scan() {
		fmt.Fprintln(d.out)
		return "", false
	}
	return strings.TrimSuffix(d.scanner.Text(), "\r"), true
}

// Choose maps a menu answer to a method key. The answer may be the menu
// number or the key itself; an empty answer selects def.
func Choose(methods []analysis.MethodInfo, answer, def string) (string, bool) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return def, true
	}
	if n, err := strconv.Atoi(answer); err == nil {
		if n < 1 || n > len(methods) {
			return "", false
		}
		return methods[n-1].Key, true
	}
	for _, m := range methods {
		if strings.EqualFold(m.Key, answer) {
			return m.Key, true
		}
	}
	return "", false
}

// ParseCount reads a positive count. An empty answer yields def.
func ParseCount(answer string, def int) (int, error) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return def, nil
	}
	n, err := strconv.Atoi(answer)
	if err != nil {
		return 0, fmt.Errorf("%w %q: enter a whole number", ErrInvalidCount, answer)
	}
	if n < 1 {
		return 0, fmt.Errorf("%w %d: enter a number greater than zero", ErrInvalidCount, n)
	}
	return n, nil
}
