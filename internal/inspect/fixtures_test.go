package inspect

import "errors"

type sample struct {
	Name   string
	secret int
}

// Describe returns the sample's name.
func (s *sample) Describe() string { return s.Name }

// greet returns a greeting.
//
// It is used by metadata tests.
func greet(name string) string {
	return "hi " + name
}

type pair[K comparable, V any] struct {
	Key   K
	Value V
}

type node struct {
	Next *node
}

// flaky documents itself but fails to describe its signature.
type flaky struct{}

func (flaky) Doc() string { return "  Flaky does things.\n\n  Really.\n" }

func (flaky) Signature() (string, error) { panic("signature exploded") }

type brokenSignature struct{}

func (brokenSignature) Signature() (string, error) { return "", errors.New("no signature") }

type manual struct{}

func (manual) Help() string { return "N\bNA\bAM\bME\bE\n    manual" }
