package seed

import (
	"fmt"
	"math/rand"

	"stackit/internal/models"

	"gorm.io/gorm"
)

// Options controls the volume of generated demo data.
type Options struct {
	Users     int
	Questions int
}

// DefaultOptions is a small but representative dataset.
var DefaultOptions = Options{
	Users:     20,
	Questions: 40,
}

var defaultTagNames = []string{
	"go", "javascript", "python", "sql", "react",
	"docker", "kubernetes", "redis", "postgres", "testing",
}

// Run populates the database with demo users, tags, questions, answers,
// votes and comments.
func Run(db *gorm.DB, opts Options) error {
	if opts.Users <= 0 {
		opts = DefaultOptions
	}
	f := NewFactory(db)

	users := make([]*models.User, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		user, err := f.CreateUser()
		if err != nil {
			return fmt.Errorf("seed user: %w", err)
		}
		users = append(users, user)
	}

	tags := make([]models.Tag, 0, len(defaultTagNames))
	for _, name := range defaultTagNames {
		tag, err := f.CreateTag(name)
		if err != nil {
			return fmt.Errorf("seed tag %q: %w", name, err)
		}
		tags = append(tags, *tag)
	}

	for i := 0; i < opts.Questions; i++ {
		author := users[f.rng.Intn(len(users))]
		questionTags := pickTags(f.rng, tags, 1+f.rng.Intn(3))

		question, err := f.CreateQuestion(author, questionTags)
		if err != nil {
			return fmt.Errorf("seed question: %w", err)
		}

		// Roughly a third of questions stay unanswered.
		if f.rng.Intn(3) == 0 {
			continue
		}

		answerCount := 1 + f.rng.Intn(3)
		for j := 0; j < answerCount; j++ {
			responder := users[f.rng.Intn(len(users))]
			if responder.ID == author.ID {
				continue
			}
			answer, err := f.CreateAnswer(responder, question)
			if err != nil {
				return fmt.Errorf("seed answer: %w", err)
			}

			for _, voter := range pickUsers(f.rng, users, f.rng.Intn(5)) {
				if voter.ID == responder.ID {
					continue
				}
				voteType := models.VoteUp
				if f.rng.Intn(4) == 0 {
					voteType = models.VoteDown
				}
				if _, err := f.CreateVote(voter, answer, voteType); err != nil {
					return fmt.Errorf("seed vote: %w", err)
				}
			}

			if f.rng.Intn(2) == 0 {
				commenter := users[f.rng.Intn(len(users))]
				text := fmt.Sprintf("@%s thanks, this helped me too", responder.Name)
				if _, err := f.CreateComment(commenter, answer, text, *responder); err != nil {
					return fmt.Errorf("seed comment: %w", err)
				}
			}

			// First answer on some questions gets accepted by the author.
			if j == 0 && f.rng.Intn(2) == 0 {
				if err := acceptAnswer(db, question.ID, answer.ID); err != nil {
					return fmt.Errorf("seed accept: %w", err)
				}
			}
		}
	}

	return nil
}

func acceptAnswer(db *gorm.DB, questionID, answerID uint) error {
	if err := db.Model(&models.Answer{}).
		Where("id = ?", answerID).
		Update("is_accepted", true).Error; err != nil {
		return err
	}
	return db.Model(&models.Question{}).
		Where("id = ?", questionID).
		Update("accepted_answer_id", answerID).Error
}

func pickTags(rng *rand.Rand, tags []models.Tag, n int) []models.Tag {
	picked := make([]models.Tag, 0, n)
	for _, i := range rng.Perm(len(tags)) {
		if len(picked) == n {
			break
		}
		picked = append(picked, tags[i])
	}
	return picked
}

func pickUsers(rng *rand.Rand, users []*models.User, n int) []*models.User {
	picked := make([]*models.User, 0, n)
	for _, i := range rng.Perm(len(users)) {
		if len(picked) == n {
			break
		}
		picked = append(picked, users[i])
	}
	return picked
}
