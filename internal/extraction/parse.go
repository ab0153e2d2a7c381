package extraction

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/zombor/receipt-uploader/internal/receipt"
)

// receiptExtractPrompt is the shared prompt used by the LLM extractors
const receiptExtractPrompt = `You are analyzing a bank transfer receipt (dekont). Read all text in the image and extract:

1. "adSoyad": full name of the sender / account holder
2. "alici": full name of the recipient
3. "islemNo": the transaction or reference number, exactly as printed
4. "tarih": the transaction date in YYYY-MM-DD format
5. "tutar": the transferred amount including its currency symbol or code, as printed
6. "riskStatus": your assessment of whether the receipt looks forged or tampered with, one of "High Risk", "Medium Risk" or "Low Risk"

The receipt was issued by: %s

Return ONLY valid JSON in this exact format:
{
  "adSoyad": "",
  "alici": "",
  "islemNo": "",
  "tarih": "YYYY-MM-DD",
  "tutar": "",
  "riskStatus": ""
}

Important:
- If you cannot find a field, use null for that field
- Do not include any text before or after the JSON
- Do not use markdown code blocks`

func extractPrompt(bank receipt.Bank) string {
	return fmt.Sprintf(receiptExtractPrompt, bank)
}

// parseModelJSON parses the JSON object in a model reply into a Result
func parseModelJSON(text string) (*Result, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSpace(text)

	startIdx := strings.Index(text, "{")
	if startIdx == -1 {
		return nil, fmt.Errorf("no JSON object found in response")
	}
	endIdx := strings.LastIndex(text, "}")
	if endIdx < startIdx {
		return nil, fmt.Errorf("invalid JSON object in response")
	}
	text = text[startIdx : endIdx+1]

	var info receipt.ExtractedInfo
	if err := json.Unmarshal([]byte(text), &info); err != nil {
		return nil, fmt.Errorf("unmarshaling json: %w", err)
	}

	status := strings.TrimSpace(info["riskStatus"])
	delete(info, "riskStatus")
	for k, v := range info {
		info[k] = strings.TrimSpace(v)
	}

	return &Result{Info: info, RiskStatus: status}, nil
}
