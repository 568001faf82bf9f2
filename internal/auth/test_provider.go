package auth

import (
	"fmt"
	"os"
)

// TestIDEnvVar supplies the fixed identifier used by the test provider.
const TestIDEnvVar = "GOLINKS_TEST_AUTH"

// FailSentinel forces an authentication failure outcome, for exercising
// failure paths in integration tests.
const FailSentinel = "fail"

// TestProvider is a deterministic identity provider for integration
// testing: it asserts whatever identifier the environment supplies. An
// unset variable is a fatal misconfiguration, caught early on purpose.
type TestProvider struct{}

// NewTestProvider creates the test identity provider.
func NewTestProvider() *TestProvider {
	return &TestProvider{}
}

func (*TestProvider) Name() string { return "test" }

func (*TestProvider) ExtractClaims(_ any) ([]string, error) {
	id := os.Getenv(TestIDEnvVar)
	if id == "" {
		return nil, fmt.Errorf("%s must be defined", TestIDEnvVar)
	}

	if id == FailSentinel {
		return nil, nil
	}

	return []string{id}, nil
}
