package hypotest

import (
	"fmt"

	"lora/domain/core"
	"lora/domain/enrichment"
	"lora/ports"
)

// New selects the strategy configured in params.
func New(params enrichment.Params) (ports.HypothesisTest, error) {
	params = params.Normalize()
	switch params.TestType {
	case enrichment.TestFisher:
		if _, err := enrichment.ParseAlternative(string(params.Alternative)); err != nil {
			return nil, err
		}
		return NewFisherTest(params.Alternative), nil
	case enrichment.TestHypergeometric:
		return NewHypergeometricTest(), nil
	}
	return nil, fmt.Errorf("%w: %q", core.ErrUnknownTestType, params.TestType)
}

// Available lists the strategies with their descriptions.
func Available() []ports.HypothesisTest {
	return []ports.HypothesisTest{
		NewFisherTest(enrichment.AlternativeGreater),
		NewHypergeometricTest(),
	}
}
