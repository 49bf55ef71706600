package main

import (
	"bytes"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/gselect/timing/bpred"
	"github.com/sarchlab/gselect/trace"
)

const sampleTrace = "../../trace/testdata/loop.trace"

func writeConfig(dir, body string) string {
	path := filepath.Join(dir, "bpred.json")
	Expect(os.WriteFile(path, []byte(body), 0644)).To(Succeed())
	return path
}

var _ = Describe("loadConfig", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	It("should return the defaults without a path", func() {
		config, err := loadConfig("")

		Expect(err).NotTo(HaveOccurred())
		Expect(config).To(Equal(bpred.DefaultConfig()))
	})

	It("should keep defaults for fields the file omits", func() {
		path := writeConfig(dir, `{"num_threads": 2, "table_size": 64}`)

		config, err := loadConfig(path)

		Expect(err).NotTo(HaveOccurred())
		Expect(config.NumThreads).To(Equal(2))
		Expect(config.TableSize).To(Equal(uint32(64)))
		Expect(config.CounterBits).To(Equal(uint8(2)))
		Expect(config.AddressShift).To(Equal(uint32(2)))
	})

	It("should reject an invalid geometry", func() {
		path := writeConfig(dir, `{"table_size": 3}`)

		config, err := loadConfig(path)

		Expect(config).To(BeNil())
		Expect(err).To(MatchError(bpred.ErrInvalidConfig))
	})

	It("should fail on a missing file", func() {
		_, err := loadConfig(filepath.Join(dir, "missing.json"))

		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("printReport", func() {
	It("should print the geometry, the replay result and the events", func() {
		var out bytes.Buffer
		config := bpred.DefaultConfig()
		result := trace.Result{Branches: 10, Conditional: 8, Mispredictions: 2}
		stats := bpred.Stats{
			Lookups:            8,
			UncondBranches:     2,
			BTBUpdates:         1,
			HistoryCorrections: 2,
			Squashes:           3,
		}

		printReport(&out, "loop.trace", config, result, stats)

		report := out.String()
		Expect(report).To(ContainSubstring("Trace: loop.trace"))
		Expect(report).To(ContainSubstring(
			"gselect table=256 counter_bits=2 shift=2 threads=1"))
		Expect(report).To(MatchRegexp(`Branches committed:\s+10\n`))
		Expect(report).To(MatchRegexp(`Conditional:\s+8\n`))
		Expect(report).To(MatchRegexp(`Mispredictions:\s+2\n`))
		Expect(report).To(MatchRegexp(`Accuracy:\s+75\.00%`))
		Expect(report).To(MatchRegexp(`Lookups:\s+8\n`))
		Expect(report).To(MatchRegexp(`Unconditional:\s+2\n`))
		Expect(report).To(MatchRegexp(`BTB updates:\s+1\n`))
		Expect(report).To(MatchRegexp(`History fixes:\s+2\n`))
		Expect(report).To(MatchRegexp(`Squashes:\s+3\n`))
	})
})

var _ = Describe("run", func() {
	var (
		dir            string
		stdout, stderr bytes.Buffer
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		stdout.Reset()
		stderr.Reset()
	})

	It("should print usage without a trace", func() {
		Expect(run(nil, &stdout, &stderr)).To(Equal(1))
		Expect(stderr.String()).To(ContainSubstring("Usage: gselect"))
		Expect(stdout.Len()).To(BeZero())
	})

	It("should refuse a trace with more threads than configured", func() {
		code := run([]string{sampleTrace}, &stdout, &stderr)

		Expect(code).To(Equal(1))
		Expect(stderr.String()).To(ContainSubstring("uses thread 1"))
		Expect(stderr.String()).To(ContainSubstring("num_threads"))
		Expect(stdout.Len()).To(BeZero())
	})

	It("should replay the trace when every thread is configured", func() {
		path := writeConfig(dir, `{"num_threads": 2}`)

		code := run([]string{"-config", path, sampleTrace}, &stdout, &stderr)

		Expect(code).To(Equal(0))
		Expect(stderr.String()).To(BeEmpty())
		Expect(stdout.String()).To(ContainSubstring("Trace: " + sampleTrace))
		Expect(stdout.String()).To(MatchRegexp(`Branches committed:\s+11\n`))
		Expect(stdout.String()).To(MatchRegexp(`Conditional:\s+8\n`))
	})

	It("should log predictor events with -v", func() {
		path := writeConfig(dir, `{"num_threads": 2}`)

		code := run([]string{"-v", "-config", path, sampleTrace},
			&stdout, &stderr)

		Expect(code).To(Equal(0))
		Expect(stderr.String()).NotTo(BeEmpty())
	})

	It("should report an invalid config", func() {
		path := writeConfig(dir, `{"counter_bits": 0}`)

		code := run([]string{"-config", path, sampleTrace}, &stdout, &stderr)

		Expect(code).To(Equal(1))
		Expect(stderr.String()).To(ContainSubstring("Error loading predictor config"))
	})

	It("should save the effective config and exit", func() {
		out := filepath.Join(dir, "saved.json")

		Expect(run([]string{"-save-config", out}, &stdout, &stderr)).To(Equal(0))

		config, err := bpred.LoadConfig(out)
		Expect(err).NotTo(HaveOccurred())
		Expect(config).To(Equal(bpred.DefaultConfig()))
	})
})
