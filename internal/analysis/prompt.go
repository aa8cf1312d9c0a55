package analysis

import (
	"fmt"
	"strconv"
	"strings"

	"billsage/internal/domain"
)

// FormatPricingContext renders reference pricing records as the
// plain-text benchmark lines embedded into stage prompts, one per
// known procedure code.
func FormatPricingContext(records []domain.ReferencePricingRecord) string {
	lines := make([]string, 0, len(records))
	for _, r := range records {
		lines = append(lines, fmt.Sprintf("CPT %s: %s | Medicare: $%s | Typical Range: $%s-$%s",
			r.Code, r.ProcedureName,
			formatMoney(r.MedicareRate),
			formatMoney(r.TypicalRangeLow),
			formatMoney(r.TypicalRangeHigh),
		))
	}
	return strings.Join(lines, "\n")
}

// IndexPricing builds a code-keyed lookup over reference pricing records.
func IndexPricing(records []domain.ReferencePricingRecord) map[string]domain.ReferencePricingRecord {
	idx := make(map[string]domain.ReferencePricingRecord, len(records))
	for _, r := range records {
		idx[r.Code] = r
	}
	return idx
}

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func buildExtractionSystemPrompt(pricingContext string) string {
	return `You are a medical billing expert. Extract structured information from hospital bills.

REFERENCE PRICING DATA (Medicare rates and typical ranges):
` + pricingContext + `

Extract the following from the bill text:
1. Hospital name and address
2. Patient information (name if visible, but omit sensitive details)
3. Date of service
4. Total amount billed
5. All line items with: CPT/procedure code, description, amount charged, quantity

Return ONLY valid JSON in this exact format:
{
  "hospitalName": "string or null",
  "hospitalAddress": "string or null",
  "patientInfo": "string or null",
  "dateOfService": "string or null",
  "totalBilled": number or null,
  "lineItems": [
    {"code": "string", "description": "string", "amount": number, "quantity": number}
  ]
}`
}

func extractionUserContent(billText string) string {
	return "Extract structured data from this medical bill:\n\n" + billText
}

func buildDetectionSystemPrompt(pricingContext string) string {
	return `You are a medical billing auditor who identifies billing errors and overcharges. Analyze medical bills and identify issues.

REFERENCE PRICING DATA (Medicare rates and typical ranges):
` + pricingContext + `

Common billing issues to look for:
1. OVERCHARGE: Amount significantly above typical range (more than 200% of high end)
2. DUPLICATE: Same procedure billed multiple times inappropriately
3. UNBUNDLING: Separate billing for procedures that should be billed together
4. UPCODING: Billing for more expensive procedure than performed
5. BALANCE BILLING: Charges that may violate No Surprises Act
6. MISSING_CODE: Services without proper CPT codes

For each issue found, provide:
- Type of issue
- Severity (high/medium/low based on potential savings)
- Clear title
- Plain-language description a patient can understand
- Estimated savings if disputed
- Specific recommendation

Return ONLY valid JSON in this exact format:
{
  "issues": [
    {
      "type": "overcharge|duplicate|missing_code|unbundling|upcoding|balance_billing",
      "severity": "high|medium|low",
      "title": "string",
      "description": "string",
      "potentialSavings": number,
      "recommendation": "string",
      "lineItem": {"code": "string", "description": "string", "amount": number},
      "referencePrice": number or null
    }
  ]
}`
}

func detectionUserContent(bill *domain.ExtractedBill, billText string) string {
	hospital := "Unknown"
	if bill.HospitalName != nil {
		hospital = *bill.HospitalName
	}
	total := "Unknown"
	if bill.TotalBilled != nil {
		total = formatMoney(*bill.TotalBilled)
	}

	var items strings.Builder
	for _, li := range bill.LineItems {
		fmt.Fprintf(&items, "- code: %q, description: %q, amount: $%s, quantity: %d\n",
			li.Code, li.Description, formatMoney(li.Amount), li.EffectiveQuantity())
	}

	return fmt.Sprintf(`Analyze this medical bill for errors and overcharges:

Hospital: %s
Total Billed: $%s
Line Items:
%s
Original Bill Text:
%s`, hospital, total, items.String(), billText)
}

const letterSystemPrompt = `You are a patient advocate drafting professional medical billing dispute letters. Write formal but assertive letters that cite relevant laws and patient rights.

Key laws to reference when applicable:
- No Surprises Act (2022): Protects against balance billing for emergency services and certain out-of-network care
- Fair Debt Collection Practices Act
- State patient billing rights
- Hospital charity care policies

The letter should be professional, clear, and actionable.`

func letterUserContent(bill *domain.ExtractedBill, issues []domain.Issue, totalSavings float64) string {
	hospital := stringOr(bill.HospitalName, "[HOSPITAL NAME]")
	address := stringOr(bill.HospitalAddress, "[HOSPITAL ADDRESS]")
	dateOfService := stringOr(bill.DateOfService, "[DATE OF SERVICE]")
	totalBilled := "[TOTAL AMOUNT]"
	if bill.TotalBilled != nil {
		totalBilled = formatMoney(*bill.TotalBilled)
	}

	var list strings.Builder
	for i, issue := range issues {
		amount := "N/A"
		if issue.LineItem != nil {
			amount = formatMoney(issue.LineItem.Amount)
		}
		refPrice := "N/A"
		if issue.ReferencePrice != nil {
			refPrice = formatMoney(*issue.ReferencePrice)
		}
		savings := 0.0
		if issue.PotentialSavings != nil {
			savings = *issue.PotentialSavings
		}
		fmt.Fprintf(&list, `
%d. %s
   - Type: %s
   - Description: %s
   - Amount in Question: $%s
   - Reference/Fair Price: $%s
   - Potential Savings: $%s
`, i+1, issue.Title, issue.Type, issue.Description, amount, refPrice, formatMoney(savings))
	}

	return fmt.Sprintf(`Generate a formal dispute letter for these billing issues:

Hospital: %s
Hospital Address: %s
Date of Service: %s
Total Billed: $%s

Issues Found:
%s
Total Potential Savings: $%.2f

Write a professional dispute letter that:
1. Clearly states this is a formal billing dispute
2. Lists each issue with specific amounts
3. Cites relevant patient rights (No Surprises Act, etc.)
4. Requests itemized bill review
5. Requests billing adjustment
6. Includes placeholders for patient name, address, account number
7. Has professional closing

Format as a complete letter ready to print and send.`,
		hospital, address, dateOfService, totalBilled, list.String(), totalSavings)
}

func stringOr(s *string, fallback string) string {
	if s != nil && *s != "" {
		return *s
	}
	return fallback
}
