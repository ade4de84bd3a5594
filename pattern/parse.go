package pattern

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/teranos/provgraph/errors"
)

// Parse reads a query from its line format:
//
//	node <var> [key=value ...]
//	edge <from> <to> [key=value ...]
//	limit <n>
//
// Values may be quoted shell-style. On node lines, label=<x> constrains the
// node label. Blank lines and lines starting with # are ignored.
func Parse(text string) (Query, error) {
	var q Query
	scanner := bufio.NewScanner(strings.NewReader(text))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		args, err := shellquote.Split(line)
		if err != nil {
			return Query{}, lineError(lineNo, "%v", err)
		}

		switch args[0] {
		case "node":
			if len(args) < 2 {
				return Query{}, lineError(lineNo, "node needs a variable")
			}
			props, err := parseProps(args[2:])
			if err != nil {
				return Query{}, lineError(lineNo, "%v", err)
			}
			np := NodePattern{Var: args[1], Props: props}
			if label, ok := props[LabelKey]; ok {
				np.Label = label
				delete(props, LabelKey)
			}
			q.Nodes = append(q.Nodes, np)

		case "edge":
			if len(args) < 3 {
				return Query{}, lineError(lineNo, "edge needs two variables")
			}
			props, err := parseProps(args[3:])
			if err != nil {
				return Query{}, lineError(lineNo, "%v", err)
			}
			q.Edges = append(q.Edges, EdgePattern{From: args[1], To: args[2], Props: props})

		case "limit":
			if len(args) != 2 {
				return Query{}, lineError(lineNo, "limit needs one number")
			}
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return Query{}, lineError(lineNo, "limit %q is not a number", args[1])
			}
			q.Limit = n

		default:
			return Query{}, lineError(lineNo, "unknown directive %q", args[0])
		}
	}
	if err := scanner.Err(); err != nil {
		return Query{}, errors.Wrap(err, "read pattern")
	}
	if err := Validate(q); err != nil {
		return Query{}, err
	}
	return q, nil
}

func parseProps(args []string) (map[string]string, error) {
	props := make(map[string]string, len(args))
	for _, arg := range args {
		k, v, ok := strings.Cut(arg, "=")
		if !ok || k == "" {
			return nil, errors.Newf("expected key=value, got %q", arg)
		}
		props[k] = v
	}
	return props, nil
}

func lineError(line int, format string, args ...interface{}) error {
	return errors.Invalidf("pattern line %d: %s", line, fmt.Sprintf(format, args...))
}
