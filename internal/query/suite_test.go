package query_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestQueryScenarios(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Query and Simulation Scenarios")
}
