package align

// FScoreResult holds precision, recall and F-score over alignment labels
type FScoreResult struct {
	Precision    float64 `json:"precision"`
	Recall       float64 `json:"recall"`
	FScore       float64 `json:"f_score"`
	NPredicted   int     `json:"n_predicted"`
	NGroundTruth int     `json:"n_ground_truth"`
}

// FScoreAlignments filters both alignments by the labels of interest and
// scores the prediction against the ground truth. A record counts as correct
// when label, score id and performance id all match. Empty prediction and
// ground truth score 1 across the board.
func FScoreAlignments(prediction, groundTruth AlignmentVector, labels []Label) FScoreResult {
	wanted := make(map[Label]bool, len(labels))
	for _, label := range labels {
		wanted[label] = true
	}

	var predFiltered, truthFiltered AlignmentVector
	for _, record := range prediction {
		if wanted[record.Label] {
			predFiltered = append(predFiltered, record)
		}
	}
	for _, record := range groundTruth {
		if wanted[record.Label] {
			truthFiltered = append(truthFiltered, record)
		}
	}

	truthSet := make(map[Alignment]bool, len(truthFiltered))
	for _, record := range truthFiltered {
		truthSet[record] = true
	}

	correct := 0
	for _, record := range predFiltered {
		if truthSet[record] {
			correct++
		}
	}

	result := FScoreResult{
		NPredicted:   len(predFiltered),
		NGroundTruth: len(truthFiltered),
	}

	if result.NPredicted == 0 && result.NGroundTruth == 0 {
		result.Precision = 1
		result.Recall = 1
		result.FScore = 1
		return result
	}

	if result.NPredicted > 0 {
		result.Precision = float64(correct) / float64(result.NPredicted)
	}
	if result.NGroundTruth > 0 {
		result.Recall = float64(correct) / float64(result.NGroundTruth)
	}
	if result.Precision+result.Recall > 0 {
		result.FScore = 2 * result.Precision * result.Recall / (result.Precision + result.Recall)
	}

	return result
}

// FScoreMatches scores only the MATCH records
func FScoreMatches(prediction, groundTruth AlignmentVector) FScoreResult {
	return FScoreAlignments(prediction, groundTruth, []Label{MatchLabel})
}
