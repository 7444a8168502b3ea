package pedigree_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/popsim/internal/pedigree"
)

var _ = Describe("Pedigree files", func() {
	var dir string

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "pedigree")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(os.RemoveAll, dir)
	})

	It("reads csv with a header and missing-parent codes", func() {
		in := strings.NewReader(`id,sire,dam
s,0,NA
d,.,
x,s,d
y,s,d
z,x,y
`)
		p, err := pedigree.ReadCSV(in)
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Len()).To(Equal(5))

		s, ok := p.Get("s")
		Expect(ok).To(BeTrue())
		Expect(s.IsFounder()).To(BeTrue())

		z, _ := p.Get("z")
		Expect(z.Generation).To(Equal(2))

		f, err := p.Inbreeding("z")
		Expect(err).NotTo(HaveOccurred())
		Expect(f).To(BeNumerically("~", 0.25, 1e-12))
	})

	It("rejects a bad generation column", func() {
		_, err := pedigree.ReadCSV(strings.NewReader("a,,,first\n"))
		Expect(err).To(MatchError(pedigree.ErrFormat))
	})

	It("rejects records naming missing parents", func() {
		_, err := pedigree.ReadCSV(strings.NewReader("a,b,c\n"))
		Expect(err).To(MatchError(pedigree.ErrUnknownParent))
	})

	It("round-trips through csv", func() {
		p, err := pedigree.FullSibLine(3, 2)
		Expect(err).NotTo(HaveOccurred())

		var buf bytes.Buffer
		Expect(pedigree.WriteCSV(&buf, p)).To(Succeed())
		Expect(buf.String()).To(HavePrefix("id,sire,dam,generation,sex\n"))

		q, err := pedigree.ReadCSV(&buf)
		Expect(err).NotTo(HaveOccurred())
		Expect(q.Individuals()).To(Equal(p.Individuals()))
	})

	It("round-trips through a spreadsheet", func() {
		p, err := pedigree.FullSibLine(4, 2)
		Expect(err).NotTo(HaveOccurred())

		path := filepath.Join(dir, "line.xlsx")
		Expect(pedigree.WriteXLSX(path, p)).To(Succeed())

		q, err := pedigree.ReadFile(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(q.Individuals()).To(Equal(p.Individuals()))

		want, _ := p.MeanInbreeding(4)
		got, err := q.MeanInbreeding(4)
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(Equal(want))
	})

	It("dispatches csv files by extension", func() {
		path := filepath.Join(dir, "ped.csv")
		Expect(os.WriteFile(path, []byte("a\nb,a,a\n"), 0o644)).To(Succeed())

		p, err := pedigree.ReadFile(path)
		Expect(err).NotTo(HaveOccurred())
		f, err := p.Inbreeding("b")
		Expect(err).NotTo(HaveOccurred())
		Expect(f).To(BeNumerically("~", 0.5, 1e-12))
	})
})
