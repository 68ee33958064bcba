package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/tuition/core/student"
)

func TestSubjectCount(t *testing.T) {
	tests := []struct {
		subjects string
		want     int
	}{
		{subjects: "", want: 0},
		{subjects: " , ,", want: 0},
		{subjects: "Math", want: 1},
		{subjects: "Math, , English,", want: 2},
		{subjects: "  Math ,Science,English  ", want: 3},
	}
	for _, tt := range tests {
		t.Run(tt.subjects, func(t *testing.T) {
			assert.Equal(t, tt.want, SubjectCount(tt.subjects))
		})
	}
}

func TestResolve(t *testing.T) {
	table := Table{
		Levels: map[string]map[string]float64{
			student.LevelPrimary4:   {"3": 115},
			student.LevelSecondary1: {"1": 50, "2": 90},
		},
		TransportInbound:  20,
		TransportOutbound: 40,
	}
	stu := func(level, subjects, transport, area string) student.Student {
		return student.Student{Level: level, Subjects: subjects, Transport: transport, TransportArea: area}
	}

	tests := []struct {
		name string
		stu  student.Student
		want Fee
	}{
		{
			name: "tuition and outbound transport",
			stu:  stu(student.LevelPrimary4, "Math, Science, English", "Yes", student.AreaOutside),
			want: Fee{Subjects: 3, Tuition: 115, Transport: 40, Total: 155},
		},
		{
			name: "inbound transport",
			stu:  stu(student.LevelSecondary1, "Math,English", "Yes", student.AreaInside),
			want: Fee{Subjects: 2, Tuition: 90, Transport: 20, Total: 110},
		},
		{
			name: "no transport ignores area",
			stu:  stu(student.LevelSecondary1, "Math", "No", student.AreaOutside),
			want: Fee{Subjects: 1, Tuition: 50, Total: 50},
		},
		{
			name: "no transport with inside area",
			stu:  stu(student.LevelSecondary1, "Math", "No", student.AreaInside),
			want: Fee{Subjects: 1, Tuition: 50, Total: 50},
		},
		{
			name: "unpriced tier",
			stu:  stu(student.LevelPrimary4, "Math", "No", student.AreaNone),
			want: Fee{Subjects: 1},
		},
		{
			name: "unpriced level",
			stu:  stu(student.LevelPrimary1, "Math, Science, English", "Yes", student.AreaInside),
			want: Fee{Subjects: 3, Transport: 20, Total: 20},
		},
		{
			name: "empty subjects",
			stu:  stu(student.LevelSecondary1, " , ", "No", student.AreaNone),
			want: Fee{},
		},
		{
			name: "unknown area is outbound",
			stu:  stu(student.LevelSecondary1, "Math", "Yes", "Elsewhere"),
			want: Fee{Subjects: 1, Tuition: 50, Transport: 40, Total: 90},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.stu, table))
		})
	}
}

func TestResolve_unpricedLevelIsFreeForAnyCount(t *testing.T) {
	table := Defaults()
	delete(table.Levels, student.LevelPrimary2)
	for _, subjects := range []string{"", "A", "A,B", "A,B,C", "A,B,C,D,E,F"} {
		fee := Resolve(student.Student{Level: student.LevelPrimary2, Subjects: subjects, Transport: "No"}, table)
		assert.Zero(t, fee.Tuition, subjects)
	}
}

func TestDefaults(t *testing.T) {
	table := Defaults()
	assert.Len(t, table.Levels, len(student.Levels))
	assert.Equal(t, 20.0, table.TransportInbound)
	assert.Equal(t, 40.0, table.TransportOutbound)
	assert.Equal(t, Fingerprint(table), table.Version)

	price, ok := table.Price(student.LevelSecondary6, "3")
	assert.True(t, ok)
	assert.Equal(t, 145.0, price)
}
