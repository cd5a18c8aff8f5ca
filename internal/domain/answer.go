package domain

// Evaluate reports whether the selected option is the correct answer.
// Comparison is exact, case-sensitive string equality against the question's
// recorded answer text. Pure function; callers are responsible for accepting
// at most one evaluation per question instance.
func Evaluate(selected, correct string) bool {
	return selected == correct
}
