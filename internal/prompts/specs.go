package prompts

const extractSpec = `Respond with a JSON object matching this exact structure:

{
  "supplier_type": "<manufacturer|trader|unknown>",
  "employee_count": 120,
  "factory_area_sqm": 8500,
  "production_lines_count": 4,
  "markets_served": {"Europe": 60, "North America": 25},
  "certifications": ["ISO 9001"],
  "has_machinery_photos": false,
  "positive_points": ["<observation>"],
  "negative_points": ["<observation>"],
  "products_verified": ["<product>"],
  "audit_date": "2024-03-18",
  "inspector_name": "<name>"
}

Field constraints:
- supplier_type: "manufacturer" only when the page shows own production
  capability; "trader" when goods are sourced from third parties; "unknown"
  when this page gives no indication.
- employee_count, factory_area_sqm, production_lines_count: integers exactly
  as printed. Omit any value the page does not state.
- markets_served: region name to percentage share (numbers, not strings).
- certifications: certificate names exactly as printed, without issue dates.
- has_machinery_photos: true only when this page contains photographs of
  production machinery or assembly lines.
- positive_points / negative_points: short verbatim inspector observations.
- products_verified: products the inspector physically checked.
- audit_date: ISO date (YYYY-MM-DD) when printed on this page.

Behavioral constraints:
- Always respond with valid JSON, no markdown fencing
- Process exactly one page per response
- Omit fields this page has no evidence for; never null-fill`

const consolidateSpec = `Respond with a JSON object matching this exact structure:

{
  "supplier_type": "<manufacturer|trader|unknown>",
  "employee_count": 120,
  "factory_area_sqm": 8500,
  "production_lines_count": 4,
  "markets_served": {"Europe": 60, "North America": 25},
  "certifications": ["ISO 9001", "BSCI"],
  "has_machinery_photos": true,
  "positive_points": ["<observation>"],
  "negative_points": ["<observation>"],
  "products_verified": ["<product>"],
  "audit_date": "2024-03-18",
  "inspector_name": "<name>"
}

Field constraints:
- supplier_type: the document-level judgement; "unknown" only when no page
  gave any indication either way.
- has_machinery_photos: true when any page contained machinery photographs.
- markets_served: one entry per region; percentages are numbers and should
  not total more than 100.
- All list fields deduplicated, original wording preserved.

Behavioral constraints:
- Always respond with valid JSON, no markdown fencing
- Merge all per-page findings; the response is the complete record
- Leave out any field the document never stated; never invent values`

var specs = map[Stage]string{
	StageExtract:     extractSpec,
	StageConsolidate: consolidateSpec,
}

// Spec returns the hardcoded specification for a pipeline stage.
// Specifications define the expected output format and behavioral constraints.
// Returns ErrInvalidStage if the stage is not recognized.
func Spec(stage Stage) (string, error) {
	text, ok := specs[stage]
	if !ok {
		return "", ErrInvalidStage
	}
	return text, nil
}
