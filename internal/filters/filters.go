package filters

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/michaelberns/wtt/models"
)

// Status задаёт статус в фильтре списка заданий. Значение "all" означает
// отсутствие фильтра и не попадает в строку запроса.
type Status string

const (
	StatusAll      Status = "all"
	StatusOpen     Status = Status(models.JobOpen)
	StatusReserved Status = Status(models.JobReserved)
	StatusClosed   Status = Status(models.JobClosed)
)

// JobFilters описывает фильтры списка заданий. Пустые поля означают "без фильтра".
type JobFilters struct {
	MinBudget *float64
	MaxBudget *float64
	Query     string
	Location  string
	Skills    []string
	Status    Status
}

// Clear возвращает состояние "фильтры сброшены"
func Clear() JobFilters {
	return JobFilters{Status: StatusAll}
}

// Encode сериализует фильтры в query-параметры. Статус "all" и пустой
// список навыков параметров не дают.
func (f JobFilters) Encode() url.Values {
	params := url.Values{}
	if f.MinBudget != nil {
		params.Set("minBudget", strconv.FormatFloat(*f.MinBudget, 'f', -1, 64))
	}
	if f.MaxBudget != nil {
		params.Set("maxBudget", strconv.FormatFloat(*f.MaxBudget, 'f', -1, 64))
	}
	if f.Query != "" {
		params.Set("q", f.Query)
	}
	if f.Location != "" {
		params.Set("location", f.Location)
	}
	if len(f.Skills) > 0 {
		params.Set("skills", strings.Join(f.Skills, ","))
	}
	if f.Status != "" && f.Status != StatusAll {
		params.Set("status", string(f.Status))
	}
	return params
}

// QueryString сериализует фильтры в строку запроса (без ведущего "?")
func (f JobFilters) QueryString() string {
	return f.Encode().Encode()
}

// Decode восстанавливает фильтры из query-параметров. Отсутствующий статус
// трактуется как "all", псевдонимы accepted/completed приводятся к
// каноническим значениям, неизвестный статус считается ошибкой.
func Decode(params url.Values) (JobFilters, error) {
	f := JobFilters{Status: StatusAll}

	if raw := params.Get("minBudget"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return JobFilters{}, fmt.Errorf("invalid minBudget %q", raw)
		}
		f.MinBudget = &v
	}
	if raw := params.Get("maxBudget"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return JobFilters{}, fmt.Errorf("invalid maxBudget %q", raw)
		}
		f.MaxBudget = &v
	}
	f.Query = params.Get("q")
	f.Location = params.Get("location")
	if raw := params.Get("skills"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			if s != "" {
				f.Skills = append(f.Skills, s)
			}
		}
	}
	if raw := params.Get("status"); raw != "" && raw != string(StatusAll) {
		status, err := models.ParseJobStatus(raw)
		if err != nil {
			return JobFilters{}, err
		}
		f.Status = Status(status)
	}
	return f, nil
}

// DecodeString разбирает строку запроса (с ведущим "?" или без)
func DecodeString(query string) (JobFilters, error) {
	query = strings.TrimPrefix(query, "?")
	params, err := url.ParseQuery(query)
	if err != nil {
		return JobFilters{}, err
	}
	return Decode(params)
}

// HasActive сообщает, задан ли хоть один фильтр
func (f JobFilters) HasActive() bool {
	return f.MinBudget != nil ||
		f.MaxBudget != nil ||
		f.Query != "" ||
		f.Location != "" ||
		len(f.Skills) > 0 ||
		(f.Status != "" && f.Status != StatusAll)
}
