package evaluation

import (
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/frahmantamala/performance-evaluation/internal"
	"github.com/frahmantamala/performance-evaluation/internal/auth"
)

func TestEvaluation(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Evaluation Module Suite")
}

var (
	adminActor    = &auth.User{ID: 1, Username: "admin", Role: auth.RoleAdmin}
	managerActor  = &auth.User{ID: 2, Username: "mgr", Role: auth.RoleManager}
	aliceActor    = &auth.User{ID: 3, Username: "alice", Role: auth.RoleEmployee}
	bobActor      = &auth.User{ID: 4, Username: "bob", Role: auth.RoleEmployee}
	carolActor    = &auth.User{ID: 5, Username: "carol", Role: auth.RoleEmployee}
	reviewerActor = &auth.User{ID: 6, Username: "reviewer", Role: "reviewer",
		Permissions: []string{auth.PermEvaluationsRead}}
)

type mockEvaluationRepository struct {
	evaluations map[int64]*Evaluation
	evidences   map[int64]*Evidence
	managers    map[int64]int64 // userID -> managerID
	nextID      int64
}

func newMockEvaluationRepository() *mockEvaluationRepository {
	return &mockEvaluationRepository{
		evaluations: map[int64]*Evaluation{},
		evidences:   map[int64]*Evidence{},
		// alice and bob report to mgr; carol reports elsewhere
		managers: map[int64]int64{3: 2, 4: 2, 5: 9},
		nextID:   1,
	}
}

func (m *mockEvaluationRepository) Create(e *Evaluation) (int64, error) {
	clone := *e
	clone.ID = m.nextID
	clone.CreatedAt = time.Now()
	clone.UpdatedAt = clone.CreatedAt
	m.nextID++
	m.evaluations[clone.ID] = &clone
	return clone.ID, nil
}

func (m *mockEvaluationRepository) GetByID(id int64) (*Evaluation, error) {
	e, ok := m.evaluations[id]
	if !ok {
		return nil, internal.ErrEvaluationNotFound
	}
	clone := *e
	return &clone, nil
}

func (m *mockEvaluationRepository) ListAll() ([]*Evaluation, error) {
	var out []*Evaluation
	for _, e := range m.evaluations {
		out = append(out, e)
	}
	return out, nil
}

func (m *mockEvaluationRepository) ListForManager(managerID int64) ([]*Evaluation, error) {
	var out []*Evaluation
	for _, e := range m.evaluations {
		if m.managers[e.EvaluateeID] == managerID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockEvaluationRepository) ListByEvaluatee(evaluateeID int64) ([]*Evaluation, error) {
	var out []*Evaluation
	for _, e := range m.evaluations {
		if e.EvaluateeID == evaluateeID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockEvaluationRepository) ListByEvaluator(evaluatorID int64) ([]*Evaluation, error) {
	var out []*Evaluation
	for _, e := range m.evaluations {
		if e.EvaluatorID == evaluatorID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockEvaluationRepository) Update(e *Evaluation) error {
	if _, ok := m.evaluations[e.ID]; !ok {
		return internal.ErrEvaluationNotFound
	}
	clone := *e
	clone.UpdatedAt = time.Now()
	m.evaluations[e.ID] = &clone
	return nil
}

func (m *mockEvaluationRepository) Delete(id int64) error {
	if _, ok := m.evaluations[id]; !ok {
		return internal.ErrEvaluationNotFound
	}
	delete(m.evaluations, id)
	return nil
}

func (m *mockEvaluationRepository) IsDirectReport(userID, managerID int64) (bool, error) {
	return m.managers[userID] == managerID, nil
}

func (m *mockEvaluationRepository) CompletedResults(evaluateeID int64) ([]*Result, error) {
	var out []*Result
	for _, e := range m.evaluations {
		if e.EvaluateeID == evaluateeID && e.IsCompleted() {
			out = append(out, &Result{
				ID:          e.ID,
				Score:       e.Score,
				Comments:    e.Comments,
				SubmittedAt: e.SubmittedAt,
				Responses:   e.Responses,
			})
		}
	}
	return out, nil
}

func (m *mockEvaluationRepository) CreateEvidence(ev *Evidence) (int64, error) {
	clone := *ev
	clone.ID = m.nextID
	m.nextID++
	m.evidences[clone.ID] = &clone
	return clone.ID, nil
}

func (m *mockEvaluationRepository) GetEvidence(id int64) (*Evidence, error) {
	ev, ok := m.evidences[id]
	if !ok {
		return nil, internal.ErrEvidenceNotFound
	}
	return ev, nil
}

func (m *mockEvaluationRepository) ListEvidences(evaluationID int64) ([]*Evidence, error) {
	var out []*Evidence
	for _, ev := range m.evidences {
		if ev.EvaluationID == evaluationID {
			out = append(out, ev)
		}
	}
	return out, nil
}

var _ = ginkgo.Describe("EvaluationService", func() {
	var (
		service  *Service
		mockRepo *mockEvaluationRepository
	)

	seed := func(evaluatorID, evaluateeID int64, status string) int64 {
		id, err := mockRepo.Create(&Evaluation{
			EvaluatorID: evaluatorID,
			EvaluateeID: evaluateeID,
			Responses:   json.RawMessage(`{}`),
			Status:      status,
		})
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		if status == StatusCompleted {
			e := mockRepo.evaluations[id]
			now := time.Now()
			e.SubmittedAt = &now
		}
		return id
	}

	ginkgo.BeforeEach(func() {
		mockRepo = newMockEvaluationRepository()
		service = NewService(mockRepo, true, slog.Default())
	})

	ginkgo.Describe("Create", func() {
		ginkgo.It("lets a manager evaluate a direct report", func() {
			eval, err := service.Create(managerActor, CreateEvaluationDTO{EvaluateeID: aliceActor.ID})

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(eval.Status).To(gomega.Equal(StatusPending))
			gomega.Expect(eval.EvaluatorID).To(gomega.Equal(managerActor.ID))
		})

		ginkgo.It("forbids a manager evaluating outside their team", func() {
			_, err := service.Create(managerActor, CreateEvaluationDTO{EvaluateeID: carolActor.ID})

			gomega.Expect(err).To(gomega.MatchError(internal.ErrOutOfScope))
		})

		ginkgo.It("lets an employee self-assess only", func() {
			_, err := service.Create(aliceActor, CreateEvaluationDTO{EvaluateeID: aliceActor.ID})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			_, err = service.Create(aliceActor, CreateEvaluationDTO{EvaluateeID: bobActor.ID})
			gomega.Expect(err).To(gomega.HaveOccurred())
		})

		ginkgo.It("lets an admin evaluate anyone", func() {
			_, err := service.Create(adminActor, CreateEvaluationDTO{EvaluateeID: carolActor.ID})

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
		})

		ginkgo.It("forbids unknown roles", func() {
			_, err := service.Create(reviewerActor, CreateEvaluationDTO{EvaluateeID: aliceActor.ID})

			gomega.Expect(err).To(gomega.MatchError(internal.ErrForbidden))
		})

		ginkgo.It("lets an employee with the default grants start a self-assessment", func() {
			actor := &auth.User{
				ID:          aliceActor.ID,
				Username:    aliceActor.Username,
				Role:        auth.RoleEmployee,
				Permissions: auth.DefaultRoleGrants[auth.RoleEmployee],
			}

			eval, err := service.Create(actor, CreateEvaluationDTO{EvaluateeID: actor.ID})

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(eval.EvaluatorID).To(gomega.Equal(actor.ID))
			gomega.Expect(eval.EvaluateeID).To(gomega.Equal(actor.ID))
			gomega.Expect(eval.Status).To(gomega.Equal(StatusPending))
		})

		ginkgo.It("rejects malformed responses", func() {
			_, err := service.Create(adminActor, CreateEvaluationDTO{
				EvaluateeID: aliceActor.ID,
				Responses:   json.RawMessage(`{broken`),
			})

			gomega.Expect(err).To(gomega.HaveOccurred())
			_, ok := err.(ValidationError)
			gomega.Expect(ok).To(gomega.BeTrue())
		})
	})

	ginkgo.Describe("List scoping", func() {
		ginkgo.BeforeEach(func() {
			seed(2, aliceActor.ID, StatusPending)
			seed(2, bobActor.ID, StatusPending)
			seed(1, carolActor.ID, StatusPending)
		})

		ginkgo.It("admin sees everything", func() {
			evaluations, err := service.List(adminActor)

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(evaluations).To(gomega.HaveLen(3))
		})

		ginkgo.It("manager sees only direct reports", func() {
			evaluations, err := service.List(managerActor)

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(evaluations).To(gomega.HaveLen(2))
			for _, e := range evaluations {
				gomega.Expect(e.EvaluateeID).NotTo(gomega.Equal(carolActor.ID))
			}
		})

		ginkgo.It("employee sees only their own", func() {
			evaluations, err := service.List(aliceActor)

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(evaluations).To(gomega.HaveLen(1))
			gomega.Expect(evaluations[0].EvaluateeID).To(gomega.Equal(aliceActor.ID))
		})

		ginkgo.It("gives custom read-only roles their own slice", func() {
			evaluations, err := service.List(reviewerActor)

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(evaluations).To(gomega.BeEmpty())
		})

		ginkgo.It("lists evaluations where a custom role is the evaluatee", func() {
			seed(2, reviewerActor.ID, StatusPending)

			evaluations, err := service.List(reviewerActor)

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(evaluations).To(gomega.HaveLen(1))
			gomega.Expect(evaluations[0].EvaluateeID).To(gomega.Equal(reviewerActor.ID))
		})
	})

	ginkgo.Describe("Status transitions", func() {
		ginkgo.It("advances pending to in_progress to completed", func() {
			id := seed(2, aliceActor.ID, StatusPending)

			inProgress := StatusInProgress
			_, err := service.Update(managerActor, id, UpdateEvaluationDTO{Status: &inProgress})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			completed := StatusCompleted
			eval, err := service.Update(managerActor, id, UpdateEvaluationDTO{Status: &completed})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(eval.Status).To(gomega.Equal(StatusCompleted))
			gomega.Expect(eval.SubmittedAt).NotTo(gomega.BeNil())
		})

		ginkgo.It("refuses moving backwards", func() {
			id := seed(2, aliceActor.ID, StatusInProgress)

			pending := StatusPending
			_, err := service.Update(managerActor, id, UpdateEvaluationDTO{Status: &pending})

			gomega.Expect(err).To(gomega.MatchError(internal.ErrInvalidStatus))
		})

		ginkgo.It("freezes completed evaluations", func() {
			id := seed(2, aliceActor.ID, StatusCompleted)

			comments := "late edit"
			_, err := service.Update(managerActor, id, UpdateEvaluationDTO{Comments: &comments})

			gomega.Expect(err).To(gomega.MatchError(internal.ErrAlreadyCompleted))
		})
	})

	ginkgo.Describe("Submit", func() {
		ginkgo.It("stamps submitted_at", func() {
			id := seed(2, aliceActor.ID, StatusInProgress)

			eval, err := service.Submit(managerActor, id)

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(eval.Status).To(gomega.Equal(StatusCompleted))
			gomega.Expect(eval.SubmittedAt).NotTo(gomega.BeNil())
		})

		ginkgo.It("conflicts on re-submit", func() {
			id := seed(2, aliceActor.ID, StatusInProgress)

			_, err := service.Submit(managerActor, id)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			_, err = service.Submit(managerActor, id)
			gomega.Expect(err).To(gomega.MatchError(internal.ErrAlreadyCompleted))
		})

		ginkgo.It("lets the evaluatee submit their self-assessment", func() {
			id := seed(3, aliceActor.ID, StatusInProgress)

			_, err := service.Submit(aliceActor, id)

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
		})
	})

	ginkgo.Describe("SaveProgress", func() {
		ginkgo.It("lets the evaluatee store partial answers", func() {
			id := seed(2, aliceActor.ID, StatusPending)

			eval, err := service.SaveProgress(aliceActor, id, SaveProgressDTO{
				Responses: json.RawMessage(`{"q1":"draft"}`),
				Status:    StatusInProgress,
			})

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(eval.Status).To(gomega.Equal(StatusInProgress))
			gomega.Expect(string(eval.Responses)).To(gomega.MatchJSON(`{"q1":"draft"}`))
		})

		ginkgo.It("forbids anyone but the evaluatee", func() {
			id := seed(2, aliceActor.ID, StatusPending)

			_, err := service.SaveProgress(bobActor, id, SaveProgressDTO{Status: StatusInProgress})
			gomega.Expect(err).To(gomega.HaveOccurred())

			_, err = service.SaveProgress(managerActor, id, SaveProgressDTO{Status: StatusInProgress})
			gomega.Expect(err).To(gomega.HaveOccurred())
		})

		ginkgo.It("rejects completed as a progress state", func() {
			id := seed(2, aliceActor.ID, StatusPending)

			_, err := service.SaveProgress(aliceActor, id, SaveProgressDTO{Status: StatusCompleted})

			gomega.Expect(err).To(gomega.MatchError(internal.ErrInvalidStatus))
		})

		ginkgo.It("refuses sliding back from in_progress to pending", func() {
			id := seed(2, aliceActor.ID, StatusInProgress)

			_, err := service.SaveProgress(aliceActor, id, SaveProgressDTO{Status: StatusPending})

			gomega.Expect(err).To(gomega.MatchError(internal.ErrInvalidStatus))
		})
	})

	ginkgo.Describe("Responses round-trip", func() {
		ginkgo.It("returns stored answers byte-for-byte equivalent", func() {
			payload := `{"q1":"excellent","q2":5,"nested":{"strengths":["a","b"]}}`

			eval, err := service.Create(adminActor, CreateEvaluationDTO{
				EvaluateeID: aliceActor.ID,
				Responses:   json.RawMessage(payload),
			})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			loaded, err := service.Get(adminActor, eval.ID)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(string(loaded.Responses)).To(gomega.MatchJSON(payload))
		})
	})

	ginkgo.Describe("Delete", func() {
		ginkgo.It("allows a manager within their team", func() {
			id := seed(2, aliceActor.ID, StatusPending)

			gomega.Expect(service.Delete(managerActor, id)).To(gomega.Succeed())
		})

		ginkgo.It("forbids a manager outside their team", func() {
			id := seed(1, carolActor.ID, StatusPending)

			gomega.Expect(service.Delete(managerActor, id)).To(gomega.MatchError(internal.ErrOutOfScope))
		})

		ginkgo.It("forbids employees", func() {
			id := seed(3, aliceActor.ID, StatusPending)

			gomega.Expect(service.Delete(aliceActor, id)).To(gomega.MatchError(internal.ErrForbidden))
		})
	})

	ginkgo.Describe("Evidence", func() {
		ginkgo.It("stores and returns the uploaded bytes", func() {
			id := seed(2, aliceActor.ID, StatusInProgress)

			attached, err := service.AttachEvidence(aliceActor, id, "review.pdf", []byte("pdf-bytes"))
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(attached.StorageName).To(gomega.HaveSuffix(".pdf"))
			gomega.Expect(attached.StorageName).NotTo(gomega.Equal("review.pdf"))

			evidence, err := service.Evidence(aliceActor, attached.ID)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(evidence.FileName).To(gomega.Equal("review.pdf"))
			gomega.Expect(evidence.FileData).To(gomega.Equal([]byte("pdf-bytes")))
		})

		ginkgo.It("returns not found for a missing evaluation", func() {
			_, err := service.AttachEvidence(aliceActor, 999, "x.txt", []byte("x"))

			gomega.Expect(err).To(gomega.MatchError(internal.ErrEvaluationNotFound))
		})

		ginkgo.It("forbids uploads from unrelated employees", func() {
			id := seed(2, aliceActor.ID, StatusInProgress)

			_, err := service.AttachEvidence(bobActor, id, "x.txt", []byte("x"))

			gomega.Expect(err).To(gomega.HaveOccurred())
		})

		ginkgo.It("rejects empty files", func() {
			id := seed(2, aliceActor.ID, StatusInProgress)

			_, err := service.AttachEvidence(aliceActor, id, "x.txt", nil)

			gomega.Expect(err).To(gomega.HaveOccurred())
			_, ok := err.(ValidationError)
			gomega.Expect(ok).To(gomega.BeTrue())
		})
	})

	ginkgo.Describe("MyResults", func() {
		ginkgo.It("returns only completed evaluations of the caller", func() {
			seed(2, aliceActor.ID, StatusCompleted)
			seed(2, aliceActor.ID, StatusPending)
			seed(2, bobActor.ID, StatusCompleted)

			results, err := service.MyResults(aliceActor)

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(results).To(gomega.HaveLen(1))
		})
	})

	ginkgo.Describe("employee update policy flag", func() {
		ginkgo.It("blocks evaluatee edits when disabled", func() {
			restricted := NewService(mockRepo, false, slog.Default())
			id := seed(2, aliceActor.ID, StatusPending)

			comments := "self edit"
			_, err := restricted.Update(aliceActor, id, UpdateEvaluationDTO{Comments: &comments})

			gomega.Expect(err).To(gomega.MatchError(internal.ErrForbidden))
		})

		ginkgo.It("allows evaluatee edits when enabled", func() {
			id := seed(2, aliceActor.ID, StatusPending)

			comments := "self edit"
			eval, err := service.Update(aliceActor, id, UpdateEvaluationDTO{Comments: &comments})

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(eval.Comments).To(gomega.Equal("self edit"))
		})
	})
})
