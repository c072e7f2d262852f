package parser

import "testing"

func TestClassifyMarkers(t *testing.T) {
	tests := []struct {
		line     string
		marker   Marker
		decision Decision
		rest     string
	}{
		{"F add(a: i32, b: i32) -> i32 {", FuncMarker, Definition, "add(a: i32, b: i32) -> i32 {"},
		{"f helper<T>(x: T) {", FuncMarker, Definition, "helper<T>(x: T) {"},
		{"F(x)", FuncMarker, Call, ""},
		{"f (x)", FuncMarker, Call, ""},
		{"S Point { x: f64, y: f64 }", StructMarker, Definition, "Point { x: f64, y: f64 }"},
		{"s 1", NoMarker, Unknown, ""},
		{"E Shape {", EnumMarker, Definition, "Shape {"},
		{"E Shape => 1,", NoMarker, Unknown, ""},
		{"I Shape {", ImplMarker, Definition, "Shape {"},
		{"I Display for Shape {", ImplMarker, Definition, "Display for Shape {"},
		{"TR Area {", TraitMarker, Definition, "Area {"},
		{"DM geometry {", ModMarker, Definition, "geometry {"},
		{"D util;", ModMarker, Definition, "util;"},
		{"u std::fmt;", UseMarker, Definition, "std::fmt;"},
		{"l x = 5;", LetMarker, Definition, "x = 5;"},
		{"v count = 0;", LetMarker, Definition, "count = 0;"},
		{"v.push(1);", NoMarker, Unknown, ""},
		{"v = 3;", NoMarker, Unknown, ""},
		{"< x + 1", ReturnMarker, Definition, "x + 1"},
		{"br", BreakMarker, Definition, ""},
		{"ct;", ContinueMarker, Definition, ""},
		{"L {", LoopMarker, Definition, "{"},
		{"L x in 0..10 {", LoopMarker, Definition, "x in 0..10 {"},
		{"L n > 0 {", LoopMarker, Definition, "n > 0 {"},
		{"L(x)", LoopMarker, Call, ""},
		{"? x > 1 {", IfMarker, Definition, "x > 1 {"},
		{"M r {", MatchMarker, Definition, "r {"},
		{"M(x)", MatchMarker, Call, ""},
		{"M = 4;", NoMarker, Unknown, ""},
		{"> \"hi {}\", x", PrintMarker, Definition, "\"hi {}\", x"},
		{"#D(Debug, Clone)", DeriveMarker, Definition, "Debug, Clone"},
		{"#[derive(PartialEq)]", DeriveMarker, Definition, "PartialEq"},
		{"#[inline]", AttrMarker, Definition, "#[inline]"},
		{"t Id = u64;", TypeAliasMarker, Definition, "Id = u64;"},
		{"t x = 5;", TypeAliasMarker, Definition, "x = 5;"},
		{"t = 5;", NoMarker, Unknown, ""},
		{"t += 1;", NoMarker, Unknown, ""},
		{"CP MAX: i32 = 10;", ConstMarker, Definition, "MAX: i32 = 10;"},
		{"C MIN: i32 = 0;", ConstMarker, Definition, "MIN: i32 = 0;"},
		{"/// Adds numbers", DocMarker, Definition, "Adds numbers"},
		{"// note", CommentMarker, Definition, "note"},
		{"foo(1, 2);", NoMarker, Unknown, ""},
		{"x += 1;", NoMarker, Unknown, ""},
	}

	for _, tt := range tests {
		got := Classify(tt.line)
		if got.Marker != tt.marker {
			t.Errorf("Classify(%q).Marker = %s, expected %s", tt.line, got.Marker, tt.marker)
			continue
		}
		if got.Decision != tt.decision {
			t.Errorf("Classify(%q).Decision = %s, expected %s", tt.line, got.Decision, tt.decision)
		}
		if tt.decision == Definition && got.Rest != tt.rest {
			t.Errorf("Classify(%q).Rest = %q, expected %q", tt.line, got.Rest, tt.rest)
		}
	}
}

func TestClassifyFlags(t *testing.T) {
	tests := []struct {
		line                    string
		public, async, mut, neg bool
	}{
		{"F run() {", true, false, false, false},
		{"f run() {", false, false, false, false},
		{"~F fetch() {", true, true, false, false},
		{"~f fetch() {", false, true, false, false},
		{"S Point {", true, false, false, false},
		{"s Point {", false, false, false, false},
		{"v x = 1;", false, false, true, false},
		{"?! done {", false, false, false, true},
		{"pub async fn load() {", true, true, false, false},
		{"let mut n = 0;", false, false, true, false},
	}

	for _, tt := range tests {
		got := Classify(tt.line)
		if got.Public != tt.public || got.Async != tt.async || got.Mutable != tt.mut || got.Negated != tt.neg {
			t.Errorf("Classify(%q) flags = pub:%v async:%v mut:%v neg:%v, expected pub:%v async:%v mut:%v neg:%v",
				tt.line, got.Public, got.Async, got.Mutable, got.Negated, tt.public, tt.async, tt.mut, tt.neg)
		}
	}
}

func TestClassifyLongForm(t *testing.T) {
	tests := []struct {
		line   string
		marker Marker
	}{
		{"fn main() {", FuncMarker},
		{"pub fn area(&self) -> f64 {", FuncMarker},
		{"pub struct Point {", StructMarker},
		{"enum Color {", EnumMarker},
		{"impl Point {", ImplMarker},
		{"impl<T> Stack<T> {", ImplMarker},
		{"pub trait Shape {", TraitMarker},
		{"mod tests {", ModMarker},
		{"use std::io;", UseMarker},
		{"let x = 1;", LetMarker},
		{"return x;", ReturnMarker},
		{"while i < 10 {", LoopMarker},
		{"for x in xs {", LoopMarker},
		{"loop {", LoopMarker},
		{"if a {", IfMarker},
		{"match v {", MatchMarker},
		{"static COUNT: u32 = 0;", ConstMarker},
		{"break;", BreakMarker},
		{"continue", ContinueMarker},
		{"returned = 1;", NoMarker},
	}

	for _, tt := range tests {
		if got := Classify(tt.line); got.Marker != tt.marker {
			t.Errorf("Classify(%q).Marker = %s, expected %s", tt.line, got.Marker, tt.marker)
		}
	}
}
