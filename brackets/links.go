package brackets

import (
	"github.com/Dosada05/tournament-draws/models"
)

// GenerateLink builds a link between two structure rounds.
func GenerateLink(linkType models.LinkType, sourceStructureID string, sourceRound int, targetStructureID string, targetRound int, feedProfile models.FeedProfile) *models.DrawLink {
	if feedProfile == "" {
		feedProfile = models.FeedProfileTopDown
	}
	return &models.DrawLink{
		LinkType: linkType,
		Source:   models.LinkSource{StructureID: sourceStructureID, RoundNumber: sourceRound},
		Target: models.LinkTarget{
			StructureID: targetStructureID,
			RoundNumber: targetRound,
			FeedProfile: feedProfile,
		},
	}
}

func newLoserLink(source string, sourceRound int, target string, targetRound int, profile models.FeedProfile) *models.DrawLink {
	return GenerateLink(models.LinkTypeLoser, source, sourceRound, target, targetRound, profile)
}

// newDrawWinnerLink routes the winners of a source round to explicit target
// draw positions, in source roundPosition order.
func newDrawWinnerLink(source string, sourceRound int, target string, targetRound int, drawPositions []int) *models.DrawLink {
	link := GenerateLink(models.LinkTypeWinner, source, sourceRound, target, targetRound, models.FeedProfileDraw)
	link.Target.DrawPositions = append([]int(nil), drawPositions...)
	return link
}

// newPositionLink routes participants finishing at the given group positions
// of a container structure into a target structure.
func newPositionLink(source string, finishingPositions []int, target string) *models.DrawLink {
	return &models.DrawLink{
		LinkType: models.LinkTypePosition,
		Source:   models.LinkSource{StructureID: source, FinishingPositions: append([]int(nil), finishingPositions...)},
		Target:   models.LinkTarget{StructureID: target, RoundNumber: 1, FeedProfile: models.FeedProfileTopDown},
	}
}

// FindLink returns the link of linkType leaving the structure round.
func FindLink(links []*models.DrawLink, linkType models.LinkType, structureID string, roundNumber int) *models.DrawLink {
	for _, link := range links {
		if link.LinkType == linkType && link.Source.StructureID == structureID && link.Source.RoundNumber == roundNumber {
			return link
		}
	}
	return nil
}

// LinksForStructure returns every link touching the structure.
func LinksForStructure(links []*models.DrawLink, structureID string) (sources, targets []*models.DrawLink) {
	for _, link := range links {
		if link.Source.StructureID == structureID {
			sources = append(sources, link)
		}
		if link.Target.StructureID == structureID {
			targets = append(targets, link)
		}
	}
	return sources, targets
}

// ValidateLinks checks that every link points at structures of the draw and
// uses a known feed profile.
func ValidateLinks(dd *models.DrawDefinition) error {
	for _, link := range dd.Links {
		if FindStructure(dd, link.Source.StructureID) == nil {
			return newError(ErrStructureNotFound, "link source", "structureId", link.Source.StructureID)
		}
		if FindStructure(dd, link.Target.StructureID) == nil {
			return newError(ErrStructureNotFound, "link target", "structureId", link.Target.StructureID)
		}
		switch link.Target.FeedProfile {
		case models.FeedProfileTopDown, models.FeedProfileBottomUp, models.FeedProfileRandom, models.FeedProfileDraw:
		default:
			return newError(ErrInvalidValues, "unknown feedProfile", "feedProfile", link.Target.FeedProfile)
		}
	}
	return nil
}
