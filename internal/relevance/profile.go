// Package relevance scores how pertinent a website or text snippet is to a
// target industry vertical using positive/negative keyword sets.
package relevance

import (
	"os"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Profile holds the keyword configuration for one industry vertical. The
// thresholds are empirically tuned, so they stay configuration rather than
// constants.
type Profile struct {
	Positive []string `yaml:"positive"`
	Negative []string `yaml:"negative"`
	MinScore int      `yaml:"min_score"`
}

// DefaultMinScore is applied when a profile does not set its own threshold.
const DefaultMinScore = 20

// builtinProfiles covers the Italian small-industry verticals the pipeline
// targets out of the box.
var builtinProfiles = map[string]Profile{
	"metalmeccanica": {
		Positive: []string{
			"lavorazioni", "produzione", "industriale",
			"cnc", "torneria", "fresatura",
			"carpenteria", "taglio laser", "piegatura",
			"lamiera", "saldatura", "costruzioni meccaniche",
			"officina stampi", "costruzione stampi",
			"macchine utensili", "macchinari industriali",
		},
		Negative: []string{
			"riparazione", "assistenza", "centro assistenza",
			"ricambi", "autofficina", "carrozzeria",
			"usato", "vendita", "negozio",
			"concessionaria", "noleggio auto",
		},
	},
	"plastica": {
		Positive: []string{
			"stampaggio", "iniezione", "estrusione",
			"termoformatura", "produzione",
			"materie plastiche", "polimeri",
			"soffiaggio", "profili plastici",
		},
		Negative: []string{
			"negozio", "rivendita", "vendita", "shop",
			"bricolage", "fai da te", "casalinghi",
		},
	},
	"fotovoltaico": {
		Positive: []string{
			"fotovoltaico", "pannelli", "inverter", "accumulo",
			"impianto", "energia solare", "kwh", "kwp",
		},
		Negative: []string{
			"riparazione elettrodomestici", "negozio", "rivendita",
			"ecommerce", "supermercato",
		},
	},
	"domotica": {
		Positive: []string{
			"domotica", "smart home", "automazione", "knx",
			"home automation", "controllo luci", "termostato smart",
			"building automation",
		},
		Negative: []string{
			"negozio", "rivendita", "ecommerce",
			"informatica", "telefonia",
		},
	},
	"legno_arredo": {
		Positive: []string{
			"produzione", "fabbrica", "industriale",
			"mobilificio", "mobili", "falegnameria",
			"pannelli legno", "lavorazione legno",
			"arredamento", "cucine su misura",
		},
		Negative: []string{
			"negozio", "showroom", "rivendita",
			"design", "interior design",
			"arredamento negozio", "mobilificio al dettaglio",
		},
	},
	"ceramica_laterizi_cemento": {
		Positive: []string{
			"ceramica", "piastrelificio", "piastrelle",
			"fornace", "laterizi", "laterificio",
			"cementificio", "calcestruzzo", "prefabbricati",
			"blocco cemento",
		},
		Negative: []string{
			"negozio", "rivendita", "showroom",
			"arredo bagno", "rivenditore ceramiche",
			"fai da te", "bricolage",
		},
	},
	"carta_packaging_stampa": {
		Positive: []string{
			"cartiera", "cartotecnica", "scatolificio",
			"imballaggi", "packaging", "imballaggi cartone",
			"stampa", "tipografia", "stamperia",
			"offset", "flessografica", "etichette adesive",
		},
		Negative: []string{
			"copisteria", "cartoleria", "negozio",
			"service stampa", "fotocopie",
			"shop online",
		},
	},
	"alimentare_industriale": {
		Positive: []string{
			"panificio industriale", "forno industriale",
			"caseificio", "latteria", "salumificio",
			"pastificio", "laboratorio alimentare",
			"stabilimento", "trasformazione alimentare",
			"confezionamento alimentare",
		},
		Negative: []string{
			"ristorante", "pizzeria", "bar",
			"gastronomia", "panificio artigianale",
			"negozio alimentari", "supermercato",
		},
	},
	"vetro_alluminio_serramenti": {
		Positive: []string{
			"vetreria", "vetreria industriale",
			"serramenti", "infissi", "alluminio",
			"pvc", "fabbrica serramenti",
			"officina infissi", "produzione infissi",
		},
		Negative: []string{
			"showroom", "negozio",
			"rivendita serramenti", "posa serramenti",
			"installazione infissi",
		},
	},
}

// BuiltinProfiles returns a copy of the built-in industry profile map.
func BuiltinProfiles() map[string]Profile {
	out := make(map[string]Profile, len(builtinProfiles))
	for k, v := range builtinProfiles {
		out[k] = v
	}
	return out
}

// Industries lists the known industry keys, sorted, for error messages and
// CLI help.
func Industries(profiles map[string]Profile) []string {
	keys := make([]string, 0, len(profiles))
	for k := range profiles {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// LoadProfiles reads industry profiles from a YAML file keyed by industry
// name. Entries merge over the built-in map, so a file can override one
// vertical without redefining the rest.
func LoadProfiles(path string) (map[string]Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "relevance: read profiles %s", path)
	}

	var loaded map[string]Profile
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return nil, eris.Wrapf(err, "relevance: parse profiles %s", path)
	}

	profiles := BuiltinProfiles()
	for k, v := range loaded {
		profiles[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return profiles, nil
}

// normalizeKeywords lowercases and trims a keyword list, dropping empties.
func normalizeKeywords(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			out = append(out, k)
		}
	}
	return out
}
