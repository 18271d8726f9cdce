package judge

import (
	"context"
	"math/rand"
	"sync"

	"github.com/neo/debatearena_backend/internal/types"
)

// fallbackTemplate is one pre-written evaluation used when the primary
// judge is unavailable
type fallbackTemplate struct {
	Feedback          string
	Reasoning         string
	ImprovementPoints []string
}

// fallbackTemplates rotates across debates so repeated fallback verdicts
// don't read identically
var fallbackTemplates = []fallbackTemplate{
	{
		Feedback: "This debate showcased the intellectual depth and analytical capabilities of both participants. The affirmative position constructed a framework that balanced pragmatic considerations with principled arguments, methodically building its case through progressive rounds of argumentation. The opposition employed an effective strategy of targeted critiques, challenging fundamental assumptions and offering compelling alternative perspectives. Both debaters demonstrated commendable skill in adapting their arguments as the debate progressed. While both sides occasionally missed opportunities to fully develop promising lines of reasoning, the overall quality of discourse remained high throughout all rounds.",
		Reasoning: "The winning side distinguished themselves through superior organization of their arguments, creating a logical progression that built toward a compelling conclusion. They consistently anticipated opposing arguments and preemptively addressed potential weaknesses in their position. Their rebuttals directly engaged with the central claims of their opponent rather than peripheral points. While both debaters demonstrated intellectual rigor, the winner maintained a tighter connection between their individual arguments, creating a more cohesive overall case.",
		ImprovementPoints: []string{
			"Develop a stronger signposting technique to help your audience follow your argument structure.",
			"When presenting evidence, clearly articulate the logical connection between your data and your conclusions.",
			"Identify the core values underlying your opponent's position and address those directly.",
			"Practice reconstructing your opponent's argument in its strongest possible form before critiquing it.",
			"Allocate more time to developing fewer, stronger arguments rather than briefly touching on many points.",
		},
	},
	{
		Feedback: "This debate demonstrated substantial engagement with a complex topic that required careful analysis from multiple perspectives. The affirmative established a coherent vision supported by a combination of principled reasoning and practical considerations, and was most persuasive when anticipating opposing viewpoints. The opposition mounted a substantive challenge that identified key tensions and assumptions in the affirmative case, isolating specific claims for targeted critique while offering alternative frameworks. Both participants showed intellectual adaptability, refining their positions in response to opposing arguments rather than restating predetermined talking points.",
		Reasoning: "In evaluating this debate, each side's success in constructing a comprehensive case while effectively addressing opposing arguments was weighed. The winning side demonstrated superior strategic thinking in how they framed the central questions of the debate and consistently grounded abstract concepts in concrete examples. Their rebuttals engaged their opponent's strongest points rather than focusing on peripheral issues. While both debaters made compelling individual points, the winner more effectively showed how these points reinforced each other.",
		ImprovementPoints: []string{
			"Develop a more systematic approach to evidence evaluation, addressing methodology, relevance, and limitations.",
			"Explicitly connect your specific arguments to broader principles that give them coherence.",
			"Practice identifying the implicit assumptions in both your arguments and those of your opponent.",
			"Adopt a more varied rhetorical approach that includes narratives, analogies, or hypothetical scenarios.",
			"Prepare responses to the strongest possible version of opposing arguments.",
		},
	},
	{
		Feedback: "This debate exemplified rigor and thoughtful engagement with a challenging topic. The affirmative constructed a multifaceted case addressing both theoretical principles and practical considerations, establishing clear evaluative criteria early and applying them consistently. The opposition employed sophisticated counterarguments that challenged fundamental assumptions rather than merely contesting surface-level claims, and successfully introduced alternative perspectives that reframed key aspects of the debate. Both sides occasionally missed opportunities to strengthen theoretical claims with specific examples, but the exchange maintained focus on the central questions at stake.",
		Reasoning: "Each side's effectiveness in constructing a coherent overall case, responding to opposing arguments, and supporting claims with appropriate evidence was considered. The winning side distinguished themselves through superior organization and strategic focus, directing attention to the most consequential aspects of the topic rather than being drawn into tangential issues. Their rebuttals engaged their opponent's strongest points rather than easier targets, which strengthened their position.",
		ImprovementPoints: []string{
			"Develop an explicit framework for weighing competing values when they come into tension.",
			"Use argument mapping during preparation to identify gaps or weaknesses in your case.",
			"When presenting counterarguments, explain how they undermine specific aspects of your opponent's position.",
			"Begin with your strongest, most defensible claims and progressively expand to more contestable positions.",
			"Identify the implicit values underlying your position and frame them in broadly appealing terms.",
		},
	},
}

// FallbackJudge synthesizes a verdict when the primary judge fails. The
// winner is chosen uniformly at random, scores are drawn from a bounded
// range and the prose rotates through pre-written templates. It never
// returns an error so the debate always reaches a verdict.
type FallbackJudge struct {
	mu   sync.Mutex
	rng  *rand.Rand
	next int
}

// NewFallbackJudge creates a fallback judge. The rotation start index is
// a parameter so callers (and tests) control which template is used
// first; rng drives winner and score selection.
func NewFallbackJudge(rng *rand.Rand, startIndex int) *FallbackJudge {
	return &FallbackJudge{
		rng:  rng,
		next: startIndex % len(fallbackTemplates),
	}
}

// Judge produces a synthesized verdict with the same shape as a real one
func (j *FallbackJudge) Judge(_ context.Context, _ string, _, _ []string) (*Verdict, error) {
	j.mu.Lock()
	template := fallbackTemplates[j.next]
	j.next = (j.next + 1) % len(fallbackTemplates)

	winner := types.SideAffirmative
	if j.rng.Intn(2) == 1 {
		winner = types.SideOpposition
	}
	// Scores in [60, 99]
	affScore := 60 + j.rng.Intn(40)
	oppScore := 60 + j.rng.Intn(40)
	j.mu.Unlock()

	verdict := &Verdict{
		Winner: winner,
		Score: Score{
			Affirmative: affScore,
			Opposition:  oppScore,
		},
		Feedback:          template.Feedback,
		Reasoning:         template.Reasoning,
		ImprovementPoints: template.ImprovementPoints,
	}
	verdict.Clamp()

	return verdict, nil
}
