// Package calc evaluates plain arithmetic expressions for the amount field.
// The accepted alphabet is digits, '.', and the four operators; expressions
// are parsed by recursive descent, never by dynamic evaluation.
package calc

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrEmpty          = errors.New("calc: empty expression")
	ErrDivisionByZero = errors.New("calc: division by zero")
)

// Eval computes a left-associative +-*/ expression with the usual
// precedence. A leading '-' negates the first number.
func Eval(expr string) (float64, error) {
	p := &parser{input: strings.ReplaceAll(expr, " ", "")}
	if p.input == "" {
		return 0, ErrEmpty
	}
	v, err := p.expression()
	if err != nil {
		return 0, err
	}
	if p.pos != len(p.input) {
		return 0, fmt.Errorf("calc: unexpected %q at position %d", p.input[p.pos], p.pos)
	}
	return v, nil
}

type parser struct {
	input string
	pos   int
}

func (p *parser) expression() (float64, error) {
	v, err := p.term()
	if err != nil {
		return 0, err
	}
	for {
		op, ok := p.peek()
		if !ok || (op != '+' && op != '-') {
			return v, nil
		}
		p.pos++
		rhs, err := p.term()
		if err != nil {
			return 0, err
		}
		if op == '+' {
			v += rhs
		} else {
			v -= rhs
		}
	}
}

func (p *parser) term() (float64, error) {
	v, err := p.number()
	if err != nil {
		return 0, err
	}
	for {
		op, ok := p.peek()
		if !ok || (op != '*' && op != '/') {
			return v, nil
		}
		p.pos++
		rhs, err := p.number()
		if err != nil {
			return 0, err
		}
		if op == '*' {
			v *= rhs
		} else {
			if rhs == 0 {
				return 0, ErrDivisionByZero
			}
			v /= rhs
		}
	}
}

func (p *parser) number() (float64, error) {
	start := p.pos
	if c, ok := p.peek(); ok && c == '-' {
		p.pos++
	}
	digits := 0
	dots := 0
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		switch {
		case c >= '0' && c <= '9':
			digits++
		case c == '.':
			dots++
		default:
			goto done
		}
		p.pos++
	}
done:
	if digits == 0 {
		return 0, fmt.Errorf("calc: expected a number at position %d", start)
	}
	if dots > 1 {
		return 0, fmt.Errorf("calc: malformed number %q", p.input[start:p.pos])
	}
	v, err := strconv.ParseFloat(p.input[start:p.pos], 64)
	if err != nil {
		return 0, fmt.Errorf("calc: malformed number %q", p.input[start:p.pos])
	}
	return v, nil
}

func (p *parser) peek() (byte, bool) {
	if p.pos >= len(p.input) {
		return 0, false
	}
	return p.input[p.pos], true
}

// EvalAmount evaluates expr and truncates the result toward zero, matching
// how manually typed fractional amounts are stored.
func EvalAmount(expr string) (int64, error) {
	v, err := Eval(expr)
	if err != nil {
		return 0, err
	}
	return int64(v), nil
}
