package domain_test

import (
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/scusemua/execution-monitor/m/v2/internal/domain"
)

var _ = Describe("Execution Tests", func() {
	DescribeTable("CalculateProgress",
		func(completed int, total int, expected int) {
			Expect(domain.CalculateProgress(completed, total)).To(Equal(expected))
		},
		Entry("no cases", 5, 0, 0),
		Entry("negative total", 5, -3, 0),
		Entry("nothing completed", 0, 10, 0),
		Entry("exact", 4, 10, 40),
		Entry("floored", 1, 3, 33),
		Entry("almost done", 99, 100, 99),
		Entry("done", 10, 10, 100),
	)

	DescribeTable("ParseExecutionStatus accepts every status regardless of case",
		func(input string, expected domain.ExecutionStatus) {
			status, err := domain.ParseExecutionStatus(input)
			Expect(err).To(BeNil())
			Expect(status).To(Equal(expected))
		},
		Entry("RUNNING", "RUNNING", domain.ExecutionRunning),
		Entry("success", "success", domain.ExecutionSuccess),
		Entry("Failed", "Failed", domain.ExecutionFailed),
		Entry("padded", " cancelled ", domain.ExecutionCancelled),
		Entry("TIMEOUT", "TIMEOUT", domain.ExecutionTimeout),
	)

	It("Will reject unknown statuses", func() {
		_, err := domain.ParseExecutionStatus("PAUSED")
		Expect(errors.Is(err, domain.ErrInvalidStatus)).To(BeTrue())

		_, err = domain.ParseExecutionStatus("")
		Expect(errors.Is(err, domain.ErrInvalidStatus)).To(BeTrue())
	})

	It("Will only accept final statuses for completion", func() {
		_, err := domain.ParseCompletionStatus("running")
		Expect(errors.Is(err, domain.ErrNonCompletionStatus)).To(BeTrue())

		_, err = domain.ParseCompletionStatus("PAUSED")
		Expect(errors.Is(err, domain.ErrInvalidStatus)).To(BeTrue())

		status, err := domain.ParseCompletionStatus("timeout")
		Expect(err).To(BeNil())
		Expect(status).To(Equal(domain.ExecutionTimeout))

		Expect(domain.ExecutionRunning.IsCompletion()).To(BeFalse())
		Expect(domain.ExecutionStatus("").IsCompletion()).To(BeFalse())
		Expect(domain.ExecutionSuccess.IsCompletion()).To(BeTrue())
		Expect(domain.ExecutionCancelled.IsCompletion()).To(BeTrue())
	})

	It("Will consider only SUCCESS, FAILED and CANCELLED terminal", func() {
		Expect(domain.ExecutionRunning.IsTerminal()).To(BeFalse())
		Expect(domain.ExecutionTimeout.IsTerminal()).To(BeFalse())
		Expect(domain.ExecutionSuccess.IsTerminal()).To(BeTrue())
		Expect(domain.ExecutionFailed.IsTerminal()).To(BeTrue())
		Expect(domain.ExecutionCancelled.IsTerminal()).To(BeTrue())
	})

	Context("ExecutionSession", func() {
		start := time.UnixMilli(1_700_000_000_000)

		It("Will start RUNNING with zeroed counters", func() {
			session := domain.NewExecutionSession(7, "EXEC-007", 20, start)

			Expect(session.Status).To(Equal(domain.ExecutionRunning))
			Expect(session.StartTime).To(Equal(start))
			Expect(session.LastUpdateTime).To(Equal(start))
			Expect(session.CompletedCases).To(Equal(0))
			Expect(session.ProgressPercent).To(Equal(0))
			Expect(session.IsFinished()).To(BeFalse())
		})

		It("Will deep-copy the end time when cloned", func() {
			session := domain.NewExecutionSession(7, "EXEC-007", 20, start)
			end := start.Add(time.Minute)
			session.EndTime = &end

			clone := session.Clone()
			*clone.EndTime = start.Add(time.Hour)
			clone.CompletedCases = 5

			Expect(*session.EndTime).To(Equal(end))
			Expect(session.CompletedCases).To(Equal(0))
		})

		It("Will measure unfinished sessions up to now", func() {
			session := domain.NewExecutionSession(7, "EXEC-007", 20, start)
			Expect(session.Duration(start.Add(time.Minute))).To(Equal(time.Minute))

			end := start.Add(30 * time.Second)
			session.EndTime = &end
			Expect(session.Duration(start.Add(time.Hour))).To(Equal(30 * time.Second))
		})
	})

	It("Will fold sessions into statistics", func() {
		statistics := &domain.ExecutionStatistics{}

		running := domain.NewExecutionSession(1, "EXEC-001", 10, time.Now())
		running.CompletedCases, running.SuccessCases, running.FailedCases = 4, 3, 1

		timedOut := domain.NewExecutionSession(2, "EXEC-002", 5, time.Now())
		timedOut.Status = domain.ExecutionTimeout

		statistics.Add(running)
		statistics.Add(timedOut)

		Expect(*statistics).To(Equal(domain.ExecutionStatistics{
			TotalActiveSessions: 2,
			RunningSessions:     1,
			TimeoutSessions:     1,
			TotalCases:          15,
			CompletedCases:      4,
			SuccessCases:        3,
			FailedCases:         1,
		}))
	})
})
