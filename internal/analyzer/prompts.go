package analyzer

// promptDataPlaceholder marks where the report tables are spliced into
// the analysis prompt.
const promptDataPlaceholder = "{{REPORT_DATA}}"

// analysisPromptTemplate is the built-in analysis prompt. Every data
// table carries row IDs (SRC001, KW001, ...) so the model can cite the
// exact rows behind each claim.
const analysisPromptTemplate = `You are a web analytics consultant writing a weekly performance report for a site owner.

Below are data tables covering the current reporting period, with period-over-period changes against the preceding window of the same length. Every table row carries a unique ID.

Write a markdown report with these sections:

## Executive Summary
Three to five sentences on the overall trajectory. Lead with the most significant change.

## Traffic Analysis
What drove traffic this period. Reference specific sources and pages by their row IDs (for example: organic search [SRC001] grew 25%).

## Search Performance
How the site performed in search results. Cover clicks, impressions, average position, and notable query movements.

## Opportunities
Concrete next actions based on the CTR opportunity table. For each recommendation, cite the row ID and state the expected impact.

## Watch Items
Anything declining or at risk that deserves attention next period.

Rules:
- Cite a row ID for every specific number you mention.
- Only reference data present in the tables. Do not invent numbers.
- Percentage changes are against the previous period. For average position, the change is in ranks and positive means improvement.
- Keep the whole report under 800 words.

Data tables:

{{REPORT_DATA}}`
