// Package prompts holds the prompt templates used by the dialogue chains and
// the analysis/scoring services. Dialogue templates use two named slots,
// {{chat_history}} and {{human_input}}, filled by the dialogue package.
package prompts

const DefaultJobDescription = `We are looking for a backend engineer with solid experience in ` +
	`distributed systems, relational databases and cloud infrastructure. The role involves ` +
	`designing and operating high-load services.`

const InterviewerSystem = `You are an experienced technical interviewer conducting a job interview. ` +
	`Ask one focused question at a time, follow up on weak or incomplete answers, and keep a ` +
	`professional, friendly tone. Do not answer for the candidate.`

const InterviewPlan = `1. Introduction and a short overview of the role.
2. Questions about relevant experience from the candidate's background.
3. Technical depth questions derived from the vacancy requirements.
4. One practical scenario question.
5. Closing: thank the candidate and wrap up.`

const CandidateSystem = `You are a job candidate at a technical interview. Answer questions ` +
	`truthfully based on the resume below, in the first person, concisely.

Resume:
%s`

const StressCandidateSystem = `You are a difficult, evasive job candidate at a technical interview. ` +
	`Answer vaguely, occasionally go off on tangents, and push back on questions, while staying ` +
	`loosely consistent with the resume below.

Resume:
%s`

const CandidateInfoBlock = `
Information about the candidate:
%s`

const RecommendedQuestionsBlock = `
Recommended questions to cover during the interview:
%s`

// ClosingPhrase is the marker the interviewer uses to signal the end of the
// interview; the session terminates when a generated turn contains it.
const ClosingPhrase = "that concludes our interview"

const ClosingTurn = `Thank you, that concludes our interview. Press "Finish" to end the session.`

const OpeningInstruction = `Begin the interview: introduce yourself, name the vacancy and outline the key topics you are going to cover.`

const VacancyTechSummary = `Extract the key technical and professional requirements from the ` +
	`following vacancy description. Return a short plain-text summary, one requirement per line.

Vacancy:
%s`

const QuestionGen = `Based on the following vacancy description, generate 8-10 recommended ` +
	`interview questions, one per line, without numbering.

Vacancy:
%s`

const VacancyBuilder = `Rewrite the following draft vacancy text into a complete, well-structured ` +
	`job description. Emphasise the criteria according to their weights.

Draft:
%s

Criteria weights (JSON):
%s`

const TagCloud = `Extract 10-15 short skill tags from the following vacancy description. ` +
	`Respond with a JSON array of strings and nothing else.

Vacancy:
%s`

const ResumeScorer = `You are a strict technical recruiter. Score the following resume against ` +
	`the vacancy on a scale from 0 to 100. Respond with JSON only, in the exact form:
{"score": <int 0-100>, "summary": "<2-3 sentence assessment>", "keywords": ["<matched skill>", ...]}

Vacancy:
%s

Resume:
%s`

const InterviewAnalyst = `You are an interview analyst. Given the vacancy, the candidate's resume ` +
	`and the full interview dialogue, produce a structured assessment. Respond with JSON only:
{"final_score": <int 0-100>, "strengths": [...], "weaknesses": [...], "verdict": "<hire|no_hire|borderline>", "summary": "<paragraph>"}

Vacancy:
%s

Resume:
%s

Criteria weights (JSON):
%s

Dialogue:
%s`
