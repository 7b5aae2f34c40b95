package common

import (
	"fmt"
	"strings"
)

type Optional[T any] struct {
	Value     T
	IsPresent bool
}

func (p *Optional[T]) String() string {
	if !p.IsPresent {
		return "[-]"
	}
	return fmt.Sprintf("[%v]", p.Value)
}

func NewOptional[T any](value T, isPresent bool) Optional[T] {
	return Optional[T]{Value: value, IsPresent: isPresent}
}

func Some[T any](value T) Optional[T] {
	return Optional[T]{Value: value, IsPresent: true}
}

func None[T any]() Optional[T] {
	return Optional[T]{}
}

// Email addresses are compared exactly by the stores, so every address
// entering the system goes through NewEmail first.
type Email string

func NewEmail(rawEmail string) Email {
	return Email(strings.ToLower(strings.TrimSpace(rawEmail)))
}
