// Package panels defines the five dashboard panels and the model evaluation
// blocks shown on the ML panel. The registry is fixed at compile time; all
// charts it references are rendered offline by the analysis pipeline.
package panels

// Image references one pre-rendered chart under the assets directory.
type Image struct {
	File    string `json:"file"`
	Caption string `json:"caption,omitempty"`
}

// ModelBlock describes one classifier evaluation: its confusion matrix
// image and the classification report file parsed at render time.
type ModelBlock struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Image  Image  `json:"image"`
	Report string `json:"report"`
	Note   string `json:"note"`
}

// Panel is one sidebar-selectable content view.
type Panel struct {
	Slug   string       `json:"slug"`
	Title  string       `json:"title"`
	Intro  string       `json:"intro"`
	Points []string     `json:"points,omitempty"`
	Images []Image      `json:"images,omitempty"`
	Models []ModelBlock `json:"models,omitempty"`
}

// DefaultSlug is the panel shown when none is selected.
const DefaultSlug = "overview"

var registry = []Panel{
	{
		Slug:  "overview",
		Title: "Project Overview",
		Intro: "This dashboard analyses the behaviour of Bitcoin over time: price trends, daily returns, " +
			"volatility patterns, and short-term direction predictions from machine learning models " +
			"trained offline on the same data.",
		Points: []string{
			"Historical price visualisation across bull and bear phases",
			"Daily return behaviour and 30-day rolling volatility",
			"Class imbalance handled with SMOTE before training",
			"Logistic regression and Random Forest direction classifiers",
			"Evaluation with confusion matrices, F1 scores and accuracy",
			"Data source: Yahoo Finance (BTC-USD), daily, 2017-01-01 to 2025-03-01",
			"Final model: tuned Random Forest classifier",
		},
	},
	{
		Slug:  "price-trend",
		Title: "Bitcoin Closing Price Over Time",
		Intro: "Bitcoin's closing price from the early 2017 rally through the 2021 boom and beyond. " +
			"Long-term price movement contextualises bull runs, crashes and consolidation phases, " +
			"and sets the stage for the return and volatility analysis.",
		Images: []Image{
			{File: "btc_closing_price_over_time.png", Caption: "BTC-USD Closing Price"},
		},
	},
	{
		Slug:  "volatility",
		Title: "Bitcoin Volatility and Daily Return Behaviour",
		Intro: "The rolling standard deviation of daily returns shows how volatile the market has been " +
			"in different phases, highlighting extremes like post-2017 and early COVID. The return " +
			"histogram shows that most daily moves are small, with rare sharp gains or crashes.",
		Images: []Image{
			{File: "btc_volatility_30d.png", Caption: "30-Day Rolling Volatility of Daily Returns"},
			{File: "btc_daily_return_distribution.png", Caption: "Distribution of Daily Returns"},
		},
	},
	{
		Slug:  "ml-models",
		Title: "Machine Learning Model Progression",
		Intro: "The evolution of models used to predict whether Bitcoin's price would increase the next " +
			"day. Each model used the same features with a different training strategy.",
		Models: []ModelBlock{
			{
				ID:     "initial",
				Title:  "Initial Logistic Regression (Unbalanced)",
				Image:  Image{File: "confusion_matrix_initial.png", Caption: "Confusion Matrix — Initial Model"},
				Report: "classification_report_initial.txt",
				Note: "Trained on raw, imbalanced data. The model learned to always predict the Increase " +
					"class and ignored the other entirely; accuracy looked acceptable but was misleading.",
			},
			{
				ID:     "balanced",
				Title:  "Balanced Logistic Regression (with SMOTE)",
				Image:  Image{File: "confusion_matrix_balanced.png", Caption: "Confusion Matrix — SMOTE Balanced"},
				Report: "classification_report_balanced.txt",
				Note: "SMOTE exposed the model to synthetic examples of the minority class, letting it " +
					"learn from both classes and improving the minority F1 score.",
			},
			{
				ID:     "rf",
				Title:  "Initial Random Forest Classifier Model",
				Image:  Image{File: "confusion_matrix_rf.png", Caption: "Confusion Matrix — Untuned Random Forest"},
				Report: "classification_report_rf.txt",
				Note: "Random Forest on SMOTE-balanced data without hyperparameter tuning. Performance " +
					"was similar to the balanced logistic regression.",
			},
			{
				ID:     "rf_improved_v2",
				Title:  "Tuned Random Forest Model",
				Image:  Image{File: "confusion_matrix_rf_improved_v2.png", Caption: "Confusion Matrix — Final Random Forest"},
				Report: "classification_report_rf_improved_v2.txt",
				Note: "SMOTE plus tuned hyperparameters gave the best balance between class predictions " +
					"and the highest combined F1 score. This is the deployed model.",
			},
		},
	},
	{
		Slug:  "insights",
		Title: "Project Insights and Reflections",
		Intro: "Volatility patterns revealed Bitcoin's most unstable periods, often following sharp " +
			"rallies. Daily return analysis showed that large swings are rare but impactful.",
		Points: []string{
			"A tuned Random Forest on SMOTE-balanced data gave the best predictive performance",
			"Evaluation focused on class balance via precision, recall and F1, not just accuracy",
			"Fixing class imbalance is essential to avoid biased direction models",
			"Next steps: technical indicator features, gradient boosting, live-data API, confidence scores",
		},
	},
}

var (
	bySlug  = make(map[string]Panel, len(registry))
	byModel = make(map[string]ModelBlock)
)

func init() {
	for _, p := range registry {
		bySlug[p.Slug] = p
		for _, m := range p.Models {
			byModel[m.ID] = m
		}
	}
}

// All returns the panels in sidebar order.
func All() []Panel {
	out := make([]Panel, len(registry))
	copy(out, registry)
	return out
}

// Get returns the panel for slug.
func Get(slug string) (Panel, bool) {
	p, ok := bySlug[slug]
	return p, ok
}

// Model returns the model block for id, from any panel.
func Model(id string) (ModelBlock, bool) {
	m, ok := byModel[id]
	return m, ok
}
