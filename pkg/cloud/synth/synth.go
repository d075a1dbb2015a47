// Package synth generates synthetic tag sets for exercising the layout
// engine.
//
// The three distributions cover the shapes that matter for placement
// quality: a long-tailed blog-like set ([PowerLaw]), a worst case where
// every tag competes for the same ring ([Uniform]), and a noisy mix of
// realistic labels ([Random]).
package synth

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/matzehuels/tagcloud/pkg/cloud"
)

// PowerLaw returns n tags named tag-1..tag-n whose weights fall off as
// 100/sqrt(i), with a floor of 1.
func PowerLaw(n int) []cloud.Tag {
	tags := make([]cloud.Tag, 0, max(n, 0))
	for i := 1; i <= n; i++ {
		tags = append(tags, cloud.Tag{
			Label:  fmt.Sprintf("tag-%d", i),
			Weight: max(1, int(math.Floor(100/math.Sqrt(float64(i))))),
		})
	}
	return tags
}

// Uniform returns n tags that all share the same weight. Weights below 1
// are raised to 1.
func Uniform(n, weight int) []cloud.Tag {
	weight = max(weight, 1)
	tags := make([]cloud.Tag, 0, max(n, 0))
	for i := 1; i <= n; i++ {
		tags = append(tags, cloud.Tag{Label: fmt.Sprintf("tag-%d", i), Weight: weight})
	}
	return tags
}

// Random returns n tags with unique labels drawn from a fixed vocabulary
// of technology terms. Once the vocabulary is used up, labels get a -2, -3,
// ... suffix. Weights are floor(sqrt(u)*1000)+1 for uniform u, which skews
// towards heavy tags the way busy blogs do. The same seed yields the same
// tags.
func Random(n int, seed uint64) []cloud.Tag {
	rng := rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
	order := rng.Perm(len(vocabulary))

	tags := make([]cloud.Tag, 0, max(n, 0))
	for i := 0; i < n; i++ {
		label := vocabulary[order[i%len(order)]]
		if round := i / len(order); round > 0 {
			label = fmt.Sprintf("%s-%d", label, round+1)
		}
		tags = append(tags, cloud.Tag{
			Label:  label,
			Weight: int(math.Floor(math.Sqrt(rng.Float64())*1000)) + 1,
		})
	}
	return tags
}

// Vocabulary returns a copy of the word list used by Random.
func Vocabulary() []string {
	return append([]string(nil), vocabulary...)
}

var vocabulary = []string{
	"JavaScript", "React", "Vue", "Angular", "Node", "TypeScript", "HTML", "CSS",
	"Webpack", "Babel", "ESLint", "Jest", "Mocha", "Redux", "Vuex", "GraphQL",
	"MongoDB", "Express", "Next.js", "Nuxt.js", "Svelte", "Deno", "HTTP", "API",
	"REST", "WebSockets", "Docker", "Kubernetes", "AWS", "Azure", "GCP", "Firebase",
	"Git", "GitHub", "GitLab", "CI/CD", "Agile", "Scrum", "Kanban", "DevOps",
	"Serverless", "Microservices", "Monorepo", "PWA", "SPA", "SSR", "SEO", "Accessibility",
	"Performance", "Security", "Testing", "Debugging", "Refactoring", "Design Patterns",
	"Functional", "OOP", "Reactive", "Async", "Promise", "Callback", "Event Loop",
	"Go", "Rust", "Postgres", "Redis", "gRPC", "Prometheus", "Linux",
}
