package engine

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/temcen/movierec/pkg/models"
)

// rateAll gives movieID the same score from every user in users.
func rateAll(movieID int, score float64, users ...int) []models.Rating {
	out := make([]models.Rating, 0, len(users))
	for _, u := range users {
		out = append(out, models.Rating{UserID: u, MovieID: movieID, Score: score, Timestamp: int64(1000 + u)})
	}
	return out
}

func userRange(from, to int) []int {
	var out []int
	for u := from; u <= to; u++ {
		out = append(out, u)
	}
	return out
}

func optionsWithMinRatings(min int) Options {
	opts := DefaultOptions()
	opts.MinRatings = min
	return opts
}

// genreFixture is the three movie catalog where only movies 1 and 2 clear
// the default minimum of ten ratings.
func genreFixture() ([]models.Movie, []models.Rating) {
	movies := []models.Movie{
		{ID: 1, Title: "A (1995)", Genres: []string{"Comedy"}},
		{ID: 2, Title: "B (1996)", Genres: []string{"Comedy", "Drama"}},
		{ID: 3, Title: "C (1997)", Genres: []string{"Action"}},
	}
	var ratings []models.Rating
	ratings = append(ratings, rateAll(1, 4, userRange(1, 12)...)...)
	ratings = append(ratings, rateAll(2, 3.5, userRange(1, 10)...)...)
	ratings = append(ratings, rateAll(3, 5, 1, 2)...)
	return movies, ratings
}

// gridFixture is a deterministic 20 user x 8 movie data set where roughly
// two thirds of the cells are rated.
func gridFixture() ([]models.Movie, []models.Rating) {
	genres := [][]string{
		{"Comedy"}, {"Comedy", "Drama"}, {"Drama"}, {"Action", "Thriller"},
		{"Action"}, {"Comedy", "Romance"}, {"Drama", "Romance"}, {models.NoGenres},
	}
	var movies []models.Movie
	for i, g := range genres {
		movies = append(movies, models.Movie{ID: i + 1, Title: "Movie", Genres: g})
	}
	var ratings []models.Rating
	for u := 1; u <= 20; u++ {
		for m := 1; m <= 8; m++ {
			if (u+m)%3 == 0 {
				continue
			}
			ratings = append(ratings, models.Rating{
				UserID:    u,
				MovieID:   m,
				Score:     0.5 + float64((u*m)%10)/2,
				Timestamp: int64(u*100 + m),
			})
		}
	}
	return movies, ratings
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func recIDs(recs []models.Recommendation) []int {
	ids := make([]int, len(recs))
	for i, r := range recs {
		ids[i] = r.MovieID
	}
	return ids
}
