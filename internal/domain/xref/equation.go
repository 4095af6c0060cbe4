package xref

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseEquation splits a MetaNetX equation such as
//
//	1 MNXM1@MNXD1 + 2 MNXM2@MNXD1 = 1 MNXM3@MNXD1
//
// into participants.  Coefficients must be numeric; symbolic ones like
// "(n)" are rejected.  Either side may be empty.
func ParseEquation(eq string) ([]Participant, error) {
	lhs, rhs, ok := strings.Cut(eq, "=")
	if !ok {
		return nil, fmt.Errorf("equation %q has no '='", eq)
	}
	if strings.Contains(rhs, "=") {
		return nil, fmt.Errorf("equation %q has more than one '='", eq)
	}

	substrates, err := parseSide(lhs, -1)
	if err != nil {
		return nil, err
	}
	products, err := parseSide(rhs, 1)
	if err != nil {
		return nil, err
	}
	if len(substrates)+len(products) == 0 {
		return nil, fmt.Errorf("equation %q has no participants", eq)
	}
	return append(substrates, products...), nil
}

func parseSide(side string, sign float64) ([]Participant, error) {
	side = strings.TrimSpace(side)
	if side == "" {
		return nil, nil
	}
	terms := strings.Split(side, " + ")
	out := make([]Participant, 0, len(terms))
	for _, term := range terms {
		fields := strings.Fields(term)
		if len(fields) != 2 {
			return nil, fmt.Errorf("term %q is not '<coefficient> <compound>@<compartment>'", term)
		}
		coef, err := strconv.ParseFloat(fields[0], 64)
		if err != nil || coef <= 0 {
			return nil, fmt.Errorf("term %q has unusable coefficient %q", term, fields[0])
		}
		compound, compartment, ok := strings.Cut(fields[1], "@")
		if !ok || compound == "" || compartment == "" {
			return nil, fmt.Errorf("term %q has no compartment", term)
		}
		out = append(out, Participant{
			CompoundID:    compound,
			Coefficient:   sign * coef,
			CompartmentID: compartment,
		})
	}
	return out, nil
}
