package branches_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/gitquickmerge/quickmerge/internal/branches"
)

var _ = Describe("Branches", func() {
	Describe("TargetCandidates", func() {
		It("drops HEAD and the current branch and sorts the rest", func() {
			got := branches.TargetCandidates([]string{"main", "feature/z", "feature/a", "HEAD"}, "dev")
			Expect(got).To(Equal([]string{"feature/a", "feature/z", "main"}))
		})

		It("excludes the current branch", func() {
			got := branches.TargetCandidates([]string{"main", "dev", "release"}, "dev")
			Expect(got).To(Equal([]string{"main", "release"}))
		})

		It("removes duplicates and pseudo-refs with prefixes", func() {
			got := branches.TargetCandidates([]string{"main", "origin/HEAD", "main", " refs/heads/release/ "}, "feature")
			Expect(got).To(Equal([]string{"main", "release"}))
		})

		It("returns an empty list when only the current branch exists", func() {
			Expect(branches.TargetCandidates([]string{"main"}, "main")).To(BeEmpty())
		})

		It("is deterministic for any input order", func() {
			a := branches.TargetCandidates([]string{"c", "a", "b"}, "")
			b := branches.TargetCandidates([]string{"b", "c", "a"}, "")
			Expect(a).To(Equal(b))
		})
	})

	Describe("Updatable", func() {
		It("keeps listed order and drops HEAD entries and duplicates", func() {
			got := branches.Updatable([]string{"main", "HEAD", "dev", "main", "exp"})
			Expect(got).To(Equal([]string{"main", "dev", "exp"}))
		})
	})

	Describe("Contains", func() {
		It("matches normalized names", func() {
			Expect(branches.Contains([]string{"main", "release"}, "refs/heads/release")).To(BeTrue())
			Expect(branches.Contains([]string{"main"}, "dev")).To(BeFalse())
		})
	})

	Describe("Validate", func() {
		It("accepts valid branches", func() {
			for _, b := range []string{"main", "release/v0.25", "feature/foo-bar"} {
				Expect(branches.Validate(b)).To(Succeed())
			}
		})

		It("rejects invalid branches", func() {
			for _, b := range []string{"", "release v0.25", "release..v1", "release:v1", "feat~1"} {
				Expect(branches.Validate(b)).NotTo(Succeed(), b)
			}
		})
	})

	Describe("Normalize", func() {
		It("strips refs/heads prefixes and stray slashes", func() {
			Expect(branches.Normalize(" refs/heads/release/v0.30// ")).To(Equal("release/v0.30"))
			Expect(branches.Normalize("REFS/HEADS/main")).To(Equal("main"))
			Expect(branches.Normalize(" / ")).To(BeEmpty())
		})
	})
})
