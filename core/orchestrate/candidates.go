package orchestrate

// Candidate is one (model, credential) pair the orchestrator may attempt.
// Indices refer to the configured lists and key the exhaustion sets.
type Candidate struct {
	Model           string
	Credential      string
	ModelIndex      int
	CredentialIndex int
}

// buildCandidates walks credentials in the outer loop and models in the
// inner loop. This is the canonical ordering: a rate-limited credential is
// the common failure, so rotating credentials first recovers fastest.
func buildCandidates(credentials, models []string) []Candidate {
	out := make([]Candidate, 0, len(credentials)*len(models))
	for ci, cred := range credentials {
		for mi, m := range models {
			out = append(out, Candidate{
				Model:           m,
				Credential:      cred,
				ModelIndex:      mi,
				CredentialIndex: ci,
			})
		}
	}
	return out
}

// AttemptBudget tracks exhausted credentials and models for one Parse call.
// A fresh budget is created per invocation so a transient rate limit in one
// import can never poison a later, unrelated one.
type AttemptBudget struct {
	exhaustedCredentials map[int]bool
	exhaustedModels      map[int]bool
}

func newAttemptBudget() *AttemptBudget {
	return &AttemptBudget{
		exhaustedCredentials: make(map[int]bool),
		exhaustedModels:      make(map[int]bool),
	}
}

// MarkCredential flags the credential index as rate limited or rejected.
func (b *AttemptBudget) MarkCredential(i int) { b.exhaustedCredentials[i] = true }

// MarkModel flags the model index as failed upstream.
func (b *AttemptBudget) MarkModel(i int) { b.exhaustedModels[i] = true }

// Skippable reports whether the candidate reuses an exhausted credential
// or model and should not be attempted.
func (b *AttemptBudget) Skippable(c Candidate) bool {
	return b.exhaustedCredentials[c.CredentialIndex] || b.exhaustedModels[c.ModelIndex]
}

// ExhaustedCredentials returns how many credentials were marked.
func (b *AttemptBudget) ExhaustedCredentials() int { return len(b.exhaustedCredentials) }

// ExhaustedModels returns how many models were marked.
func (b *AttemptBudget) ExhaustedModels() int { return len(b.exhaustedModels) }
