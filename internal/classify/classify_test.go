package classify_test

import (
	"errors"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/gitquickmerge/quickmerge/internal/classify"
	"github.com/gitquickmerge/quickmerge/internal/git"
)

var _ = Describe("Heuristic", func() {
	var detector classify.ConflictDetector

	BeforeEach(func() {
		detector = classify.Heuristic{}
	})

	It("prefers structured conflict data", func() {
		err := fmt.Errorf("git merge topic: %w", &git.GitError{
			Args:      []string{"merge", "topic"},
			Output:    "exit status 1",
			Err:       errors.New("exit status 1"),
			Conflicts: []string{"a.go", "b.go"},
		})

		Expect(detector.IsConflict(err)).To(BeTrue())
		Expect(detector.Files(err)).To(Equal([]string{"a.go", "b.go"}))
	})

	DescribeTable("matches conflict text case-insensitively",
		func(message string) {
			Expect(detector.IsConflict(errors.New(message))).To(BeTrue())
			Expect(detector.Files(errors.New(message))).To(BeEmpty())
		},
		Entry("conflict marker", "CONFLICT (content): Merge conflict in a.go"),
		Entry("automatic merge failed", "Automatic merge failed; fix conflicts"),
		Entry("needs merge", "error: a.go: needs merge"),
	)

	It("ignores marker words in the git command line", func() {
		err := fmt.Errorf("git merge fix/conflict-banner: %w", &git.GitError{
			Args:   []string{"-C", "/work/conflict-resolver", "merge", "--no-edit", "fix/conflict-banner"},
			Output: "fatal: refusing to merge unrelated histories\n",
			Err:    errors.New("exit status 128"),
		})

		Expect(err.Error()).To(ContainSubstring("conflict"))
		Expect(detector.IsConflict(err)).To(BeFalse())
		Expect(detector.Files(err)).To(BeEmpty())
	})

	It("matches conflict text in git output", func() {
		err := fmt.Errorf("git merge topic: %w", &git.GitError{
			Args:   []string{"merge", "topic"},
			Output: "Automatic merge failed; fix conflicts and then commit the result.\n",
			Err:    errors.New("exit status 1"),
		})

		Expect(detector.IsConflict(err)).To(BeTrue())
	})

	It("rejects unrelated failures", func() {
		Expect(detector.IsConflict(errors.New("fatal: not a git repository"))).To(BeFalse())
		Expect(detector.IsConflict(nil)).To(BeFalse())
	})
})

var _ = Describe("MissingUpstream", func() {
	It("recognises missing tracking information", func() {
		err := errors.New("There is no tracking information for the current branch.")
		Expect(classify.MissingUpstream(err)).To(BeTrue())
	})

	It("recognises an unpublished remote branch", func() {
		Expect(classify.MissingUpstream(errors.New("fatal: couldn't find remote ref release"))).To(BeTrue())
	})

	It("only reads git output for structured errors", func() {
		published := &git.GitError{
			Args:   []string{"-C", "/work/no tracking information", "pull", "--no-rebase", "origin", "main"},
			Output: "fatal: unable to access 'https://example.com/repo.git/'\n",
			Err:    errors.New("exit status 1"),
		}
		Expect(classify.MissingUpstream(fmt.Errorf("git pull origin main: %w", published))).To(BeFalse())

		unpublished := &git.GitError{
			Args:   []string{"pull", "origin", "release"},
			Output: "fatal: couldn't find remote ref release\n",
			Err:    errors.New("exit status 1"),
		}
		Expect(classify.MissingUpstream(fmt.Errorf("git pull origin release: %w", unpublished))).To(BeTrue())
	})

	It("ignores other pull failures", func() {
		Expect(classify.MissingUpstream(errors.New("fatal: Authentication failed"))).To(BeFalse())
		Expect(classify.MissingUpstream(nil)).To(BeFalse())
	})
})
