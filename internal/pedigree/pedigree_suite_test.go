package pedigree_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestPedigree(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Pedigree Suite")
}
