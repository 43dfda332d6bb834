package analyzer

import "fmt"

// The prompts pin the model to a strict JSON contract. The reply is
// still treated as untrusted; see the parse boundary in vision.

const identificationPrompt = `You are inspecting a shipment. The first image shows a product at packaging time, the second image shows what was delivered.

Identify the product in each image and judge whether they are the same product. List any obvious differences you can already see.

Respond with ONLY a JSON object in exactly this format:
{
  "packagingProduct": "name of the product in the first image",
  "deliveryProduct": "name of the product in the second image",
  "sameProduct": true,
  "confidence": 85,
  "obviousDifferences": ["difference 1", "difference 2"]
}

confidence is 0-100. obviousDifferences may be empty. Do not add any text outside the JSON object.`

func similarityPrompt(productName string) string {
	return fmt.Sprintf(`Both images show the same product: %s. The first image was taken at packaging time, the second at delivery time.

Compare them in detail and quantify how similar the delivered item is to the packaged one.

Respond with ONLY a JSON object in exactly this format:
{
  "similarityPercentage": 92,
  "differences": [
    {"description": "scratch on the left side", "severity": "medium"}
  ],
  "technicalMetrics": {
    "colorVariation": "minimal",
    "conditionChange": "minor surface wear",
    "completenessScore": 95,
    "packagingIntegrity": "box corners dented",
    "qualityAssessment": "good overall condition"
  },
  "visualDifference": "free-text description of what changed visually",
  "summary": "one-paragraph verdict"
}

severity is one of "low", "medium", "high". similarityPercentage and completenessScore are 0-100. Do not add any text outside the JSON object.`, productName)
}

func multiAnglePrompt(packagingCount, deliveryCount int) string {
	return fmt.Sprintf(`You are inspecting a shipment photographed from multiple angles. You receive %d images: the first %d show the product at packaging time, the following %d show the delivered product. Within each group the images are ordered as supplied and indexed from 0.

Pair up packaging and delivery images that show the same viewpoint and compare each pair. packagingImageIndex must be between 0 and %d, deliveryImageIndex between 0 and %d. Not every image needs a pair.

Respond with ONLY a JSON object in exactly this format:
{
  "productIdentification": {"name": "product name", "category": "product category"},
  "packagingAnalysis": {"anglesCovered": ["front", "back"], "condition": "condition at packaging"},
  "deliveryAnalysis": {"anglesCovered": ["front", "top"], "condition": "condition at delivery"},
  "angleComparisons": [
    {
      "angle": "front",
      "packagingImageIndex": 0,
      "deliveryImageIndex": 0,
      "similarityPercentage": 90,
      "differences": ["difference 1"],
      "matchQuality": "good"
    }
  ],
  "overallAssessment": {
    "areProductsSame": true,
    "overallSimilarity": 88,
    "confidence": 80,
    "comprehensiveDifferences": ["difference 1"],
    "missingAngles": ["underside"],
    "qualityConcerns": ["delivery photos are dim"]
  },
  "technicalMetrics": {
    "bestMatchingAngle": "front",
    "worstMatchingAngle": "top",
    "coverageCompleteness": 70,
    "analysisReliability": "high"
  },
  "recommendations": ["photograph the underside"]
}

matchQuality is one of "excellent", "good", "fair", "poor". All percentages and confidence are 0-100. Do not add any text outside the JSON object.`,
		packagingCount+deliveryCount, packagingCount, deliveryCount,
		packagingCount-1, deliveryCount-1)
}
